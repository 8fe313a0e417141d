package payment

import "strconv"

// Network is a card scheme.
type Network string

const (
	Visa       Network = "visa"
	Mastercard Network = "mastercard"
	Amex       Network = "amex"
	Discover   Network = "discover"
)

type networkRule struct {
	network Network
	lengths []int
	match   func(digits string) bool
}

var networkRules = []networkRule{
	{Visa, []int{13, 16, 19}, func(d string) bool { return d[0] == '4' }},
	{Mastercard, []int{16}, func(d string) bool {
		p2 := prefixInt(d, 2)
		p4 := prefixInt(d, 4)
		return (p2 >= 51 && p2 <= 55) || (p4 >= 2221 && p4 <= 2720)
	}},
	{Amex, []int{15}, func(d string) bool {
		p2 := prefixInt(d, 2)
		return p2 == 34 || p2 == 37
	}},
	{Discover, []int{16}, func(d string) bool { return prefixInt(d, 4) == 6011 }},
}

// DetectNetwork classifies a cleaned digit string.  ok is false unless
// exactly one network matches both prefix and length.
func DetectNetwork(digits string) (Network, bool) {
	if len(digits) < 4 {
		return "", false
	}
	var found []Network
	for _, rule := range networkRules {
		if !hasLength(rule.lengths, len(digits)) || !rule.match(digits) {
			continue
		}
		found = append(found, rule.network)
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

func hasLength(lengths []int, n int) bool {
	for _, l := range lengths {
		if l == n {
			return true
		}
	}
	return false
}

func prefixInt(digits string, n int) int {
	v, err := strconv.Atoi(digits[:n])
	if err != nil {
		return -1
	}
	return v
}
