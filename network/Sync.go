package network

import "fmt"

// Param is one named parameter tensor of a network. Data is the live
// backing slice: writes through it are visible to the network that
// produced it.
type Param struct {
	Name string
	Data []float64
}

// HardCopy assigns every target parameter the value of the online
// parameter with the matching name: target := online. It fails if the
// two collections have mismatched cardinality, names, or sizes.
func HardCopy(target, online []Param) error {
	return blend(target, online, 1.0, "hardcopy")
}

// SoftUpdate blends every target parameter toward the online parameter
// with the matching name: target := tau*online + (1-tau)*target.
// During training it is called once per batch update, strictly after
// the online update for that batch.
func SoftUpdate(target, online []Param, tau float64) error {
	if tau < 0 || tau > 1 {
		return fmt.Errorf("softupdate: tau must be in [0, 1]\n\thave(%v)", tau)
	}
	return blend(target, online, tau, "softupdate")
}

// blend linearly interpolates the target collection toward the online
// collection, aligning parameters by name in iteration order.
func blend(target, online []Param, tau float64, op string) error {
	if len(target) != len(online) {
		msg := "%v: mismatched parameter count\n\twant(%v)\n\thave(%v)"
		return fmt.Errorf(msg, op, len(target), len(online))
	}

	for i := range target {
		if target[i].Name != online[i].Name {
			msg := "%v: parameter %v name mismatch\n\twant(%v)\n\thave(%v)"
			return fmt.Errorf(msg, op, i, target[i].Name, online[i].Name)
		}
		if len(target[i].Data) != len(online[i].Data) {
			msg := "%v: parameter %v has mismatched size\n\twant(%v)" +
				"\n\thave(%v)"
			return fmt.Errorf(msg, op, target[i].Name, len(target[i].Data),
				len(online[i].Data))
		}

		if tau == 1.0 {
			copy(target[i].Data, online[i].Data)
			continue
		}
		for j := range target[i].Data {
			target[i].Data[j] = tau*online[i].Data[j] +
				(1-tau)*target[i].Data[j]
		}
	}
	return nil
}
