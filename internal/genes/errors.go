package genes

import "errors"

var (
	// ErrGeneLength flags a gene whose length cannot be framed into codons.
	ErrGeneLength = errors.New("gene length is not a multiple of codon length")

	// ErrEmptyGeneSet flags a missing or empty annotated gene file.
	ErrEmptyGeneSet = errors.New("genes file is not provided or empty")

	// ErrTooManySkipped flags a gene set in which more genes exceeded the
	// imprecise-codon threshold than the skip tolerance allows.
	ErrTooManySkipped = errors.New("too many genes with imprecise codons")

	// ErrNoCodons flags a gene set whose aggregate codon count is zero, so
	// no frequency or usage statistic can be formed.
	ErrNoCodons = errors.New("no codons counted")

	// ErrConstantInput flags a rank correlation over a constant vector,
	// for which no correlation is defined.
	ErrConstantInput = errors.New("constant input to rank correlation")

	// ErrZeroVariance flags a regression over a constant explanatory vector.
	ErrZeroVariance = errors.New("zero variance input")

	// ErrZeroVector flags a cosine similarity over an all-zero vector.
	ErrZeroVector = errors.New("zero vector has no direction")
)
