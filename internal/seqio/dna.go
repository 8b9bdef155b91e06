package seqio

// ReverseComplement returns the reverse complement of a nucleotide sequence
// in upper case. Ambiguous or unknown bases become 'N'.
func ReverseComplement(seq string) string {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		out[len(seq)-1-i] = complement(seq[i])
	}
	return string(out)
}

func complement(base byte) byte {
	switch base {
	case 'A', 'a':
		return 'T'
	case 'T', 't':
		return 'A'
	case 'G', 'g':
		return 'C'
	case 'C', 'c':
		return 'G'
	default:
		return 'N'
	}
}
