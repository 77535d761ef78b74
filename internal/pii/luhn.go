package pii

// luhnValid reports whether the digits of a candidate card number pass the
// Luhn checksum. Cuts false positives from arbitrary 16-digit strings.
func luhnValid(candidate string) bool {
	digits := make([]int, 0, len(candidate))
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	checksum := 0
	for i := 0; i < len(digits); i++ {
		digit := digits[len(digits)-1-i]
		if i%2 == 1 {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		checksum += digit
	}
	return checksum%10 == 0
}
