package ports

import "context"

// Location of a stored letter image.
type ObjectLocator struct {
	Bucket string
	Key    string
}

// What the image-understanding service read from a letter.
type LetterInfo struct {
	PresentName string
	Address     string
}

// Contract for fetching raw letter images.
type LetterSource interface {
	Fetch(ctx context.Context, loc ObjectLocator) ([]byte, error)
}

// Contract for extracting the requested gift and address from a letter image.
type LetterExtractor interface {
	Extract(ctx context.Context, image []byte) (LetterInfo, error)
}
