package namematch

import "strings"

// doubleMetaphone computes the primary code of the Lawrence-Philips
// double metaphone algorithm for an ASCII word (spec.md §4.1, §3:
// "only the primary code is used"). The input is expected to already
// be an ASCII projection (see asciiProject); non-letters are skipped.
//
// This is a from-scratch implementation: no double-metaphone library
// exists anywhere in the retrieved reference pack (see DESIGN.md).
func doubleMetaphone(word string) string {
	s := strings.ToUpper(word)
	// Keep letters only; the algorithm is undefined on punctuation/digits.
	letters := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			letters = append(letters, c)
		}
	}
	s = string(letters)
	n := len(s)
	if n == 0 {
		return ""
	}

	var primary strings.Builder
	const maxCodeLen = 4

	at := func(i int) byte {
		if i < 0 || i >= n {
			return 0
		}
		return s[i]
	}
	isVowel := func(c byte) bool {
		switch c {
		case 'A', 'E', 'I', 'O', 'U', 'Y':
			return true
		}
		return false
	}
	stringAt := func(start, length int, list ...string) bool {
		if start < 0 || start+length > n {
			return false
		}
		sub := s[start : start+length]
		for _, l := range list {
			if sub == l {
				return true
			}
		}
		return false
	}

	current := 0

	// Skip certain silent letter combinations at the very start.
	if stringAt(0, 2, "GN", "KN", "PN", "WR", "PS") {
		current = 1
	}
	if at(0) == 'X' {
		// X at start pronounced like Z (silent leading consonant rule)
		primary.WriteByte('S')
		current = 1
	}

	for primary.Len() < maxCodeLen && current < n {
		c := at(current)

		if isVowel(c) {
			if current == 0 {
				primary.WriteByte('A')
			}
			current++
			continue
		}

		switch c {
		case 'B':
			primary.WriteByte('P')
			if at(current+1) == 'B' {
				current += 2
			} else {
				current++
			}
		case 'C':
			switch {
			case current > 1 && !isVowel(at(current-2)) && stringAt(current-1, 3, "ACH") && at(current+2) != 'I' && (at(current+2) != 'E' || stringAt(current-2, 6, "BACHER", "MACHER")):
				primary.WriteByte('K')
				current += 2
			case stringAt(current, 2, "CH"):
				primary.WriteByte('X')
				current += 2
			case stringAt(current, 2, "CZ"):
				primary.WriteByte('S')
				current += 2
			case stringAt(current+1, 3, "CIA"):
				primary.WriteByte('X')
				current += 3
			case stringAt(current, 2, "CC") && !(current == 2 && at(0) == 'M'):
				if stringAt(current+2, 1, "I", "E", "H") && !stringAt(current+2, 2, "HU") {
					if stringAt(current+1, 3, "IA ") || stringAt(current+1, 2, "IA") {
						primary.WriteString("SX")
					} else {
						primary.WriteByte('X')
					}
					current += 3
				} else {
					primary.WriteByte('K')
					current += 2
				}
			case stringAt(current, 2, "CK", "CG", "CQ"):
				primary.WriteByte('K')
				current += 2
			case stringAt(current, 2, "CI", "CE", "CY"):
				primary.WriteByte('S')
				current += 2
			default:
				primary.WriteByte('K')
				if stringAt(current+1, 2, " C", " Q", " G") {
					current += 3
				} else if stringAt(current+1, 1, "C", "K", "Q") && !stringAt(current+1, 2, "CE", "CI") {
					current += 2
				} else {
					current++
				}
			}
		case 'D':
			switch {
			case stringAt(current, 2, "DG") && stringAt(current+2, 1, "I", "E", "Y"):
				primary.WriteByte('J')
				current += 3
			case stringAt(current, 2, "DT", "DD"):
				primary.WriteByte('T')
				current += 2
			default:
				primary.WriteByte('T')
				current++
			}
		case 'F':
			primary.WriteByte('F')
			if at(current+1) == 'F' {
				current += 2
			} else {
				current++
			}
		case 'G':
			switch {
			case at(current+1) == 'H':
				switch {
				case current > 0 && !isVowel(at(current-1)):
					primary.WriteByte('K')
					current += 2
				case current == 0:
					if at(current+2) == 'I' {
						primary.WriteByte('J')
					} else {
						primary.WriteByte('K')
					}
					current += 2
				case current > 1 && stringAt(current-2, 1, "B", "H", "D"):
					current += 2
				case current > 2 && stringAt(current-3, 1, "B", "H", "D"):
					current += 2
				case current > 3 && stringAt(current-4, 1, "B", "H"):
					current += 2
				default:
					if current > 2 && at(current-1) == 'U' && stringAt(current-3, 1, "C", "G", "L", "R", "T") {
						primary.WriteByte('F')
					} else if current > 0 && at(current-1) != 'I' {
						primary.WriteByte('K')
					}
					current += 2
				}
			case at(current+1) == 'N':
				if current == 1 && isVowel(at(0)) && !stringAt(0, 1, "X") {
					primary.WriteString("KN")
				} else if !stringAt(current+2, 2, "EY") && at(current+1) != 'Y' {
					primary.WriteString("N")
				} else {
					primary.WriteString("KN")
				}
				current += 2
			case stringAt(current+1, 2, "LI") && current+3 < n:
				primary.WriteString("KL")
				current += 2
			case current == 0 && (at(current+1) == 'Y' || stringAt(current+1, 2, "ES", "EP", "EB", "EL", "EY", "IB", "IL", "IN", "IE", "EI", "ER")):
				primary.WriteByte('K')
				current += 2
			case (stringAt(current+1, 1, "ER") || at(current+1) == 'Y') && !stringAt(0, 6, "DANGER", "RANGER", "MANGER") && at(current-1) != 'E' && at(current-1) != 'I':
				primary.WriteByte('K')
				current += 2
			case stringAt(current+1, 1, "E", "I", "Y") || stringAt(current-1, 4, "AGGI", "OGGI"):
				primary.WriteByte('J')
				current += 2
			case at(current+1) == 'G':
				primary.WriteByte('K')
				current += 2
			default:
				primary.WriteByte('K')
				current++
			}
		case 'H':
			if (current == 0 || isVowel(at(current-1))) && isVowel(at(current+1)) {
				primary.WriteByte('H')
				current += 2
			} else {
				current++
			}
		case 'J':
			if stringAt(current, 4, "JOSE") || stringAt(0, 4, "SAN ") {
				primary.WriteByte('H')
				current++
			} else {
				primary.WriteByte('J')
				if at(current+1) == 'J' {
					current += 2
				} else {
					current++
				}
			}
		case 'K':
			primary.WriteByte('K')
			if at(current+1) == 'K' {
				current += 2
			} else {
				current++
			}
		case 'L':
			primary.WriteByte('L')
			if at(current+1) == 'L' {
				current += 2
			} else {
				current++
			}
		case 'M':
			primary.WriteByte('M')
			if stringAt(current+1, 3, "MB ") || at(current+1) == 'M' {
				current += 2
			} else {
				current++
			}
		case 'N':
			primary.WriteByte('N')
			if at(current+1) == 'N' {
				current += 2
			} else {
				current++
			}
		case 'P':
			if at(current+1) == 'H' {
				primary.WriteByte('F')
				current += 2
			} else {
				primary.WriteByte('P')
				if stringAt(current+1, 1, "P", "B") {
					current += 2
				} else {
					current++
				}
			}
		case 'Q':
			primary.WriteByte('K')
			if at(current+1) == 'Q' {
				current += 2
			} else {
				current++
			}
		case 'R':
			if current == n-1 && !stringAt(0, 4, "NIER") {
				// French silent R: skip without emitting
			} else {
				primary.WriteByte('R')
			}
			if at(current+1) == 'R' {
				current += 2
			} else {
				current++
			}
		case 'S':
			switch {
			case stringAt(current-1, 3, "ISL", "YSL"):
				current++
			case current == 0 && stringAt(current, 5, "SUGAR"):
				primary.WriteByte('X')
				current++
			case stringAt(current, 2, "SH"):
				if stringAt(current+1, 4, "HEIM", "HOEK", "HOLM", "HOLZ") {
					primary.WriteByte('S')
				} else {
					primary.WriteByte('X')
				}
				current += 2
			case stringAt(current, 3, "SIO", "SIA"):
				if stringAt(current, 4, "SIAN") {
					primary.WriteByte('S')
				} else {
					primary.WriteByte('X')
				}
				current += 3
			case (current == 0 && stringAt(current+1, 1, "M", "N", "L", "W")) || at(current+1) == 'Z':
				primary.WriteByte('S')
				if at(current+1) == 'Z' {
					current += 2
				} else {
					current++
				}
			case stringAt(current, 2, "SC"):
				switch {
				case at(current+2) == 'H':
					if stringAt(current+3, 2, "OO", "ER", "EN", "UY", "ED", "EM") {
						if stringAt(current+3, 2, "ER", "EN") {
							primary.WriteString("X")
						} else {
							primary.WriteString("SK")
						}
					} else {
						if current == 0 && !isVowel(at(3)) && at(3) != 'W' {
							primary.WriteString("X")
						} else {
							primary.WriteString("SK")
						}
					}
					current += 3
				case stringAt(current+2, 1, "I", "E", "Y"):
					primary.WriteByte('S')
					current += 3
				default:
					primary.WriteString("SK")
					current += 3
				}
			default:
				primary.WriteByte('S')
				if stringAt(current+1, 1, "S", "Z") {
					current += 2
				} else {
					current++
				}
			}
		case 'T':
			switch {
			case stringAt(current, 4, "TION"):
				primary.WriteByte('X')
				current += 3
			case stringAt(current, 3, "TIA", "TCH"):
				primary.WriteByte('X')
				current += 3
			case stringAt(current, 2, "TH") || stringAt(current, 3, "TTH"):
				primary.WriteByte('0')
				current += 2
			default:
				primary.WriteByte('T')
				if stringAt(current+1, 1, "T", "D") {
					current += 2
				} else {
					current++
				}
			}
		case 'V':
			primary.WriteByte('F')
			if at(current+1) == 'V' {
				current += 2
			} else {
				current++
			}
		case 'W':
			switch {
			case stringAt(current, 2, "WR"):
				current++
			case current == 0 && (isVowel(at(current+1)) || stringAt(current, 2, "WH")):
				if isVowel(at(current+1)) {
					primary.WriteByte('A')
				}
				current++
			case (current == n-1 && isVowel(at(current-1))) || stringAt(current-1, 5, "EWSKI", "EWSKY", "OWSKI", "OWSKY") || stringAt(0, 3, "SCH"):
				current++
			default:
				current++
			}
		case 'X':
			primary.WriteString("KS")
			if stringAt(current+1, 1, "C", "X") {
				current += 2
			} else {
				current++
			}
		case 'Z':
			primary.WriteByte('S')
			if at(current+1) == 'Z' {
				current += 2
			} else {
				current++
			}
		default:
			current++
		}
	}

	out := primary.String()
	if len(out) > maxCodeLen {
		out = out[:maxCodeLen]
	}
	return out
}
