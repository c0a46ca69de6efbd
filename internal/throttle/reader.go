package throttle

import (
	"io"
)

// budgetedReader wraps an object body so every chunk is charged against
// the shared budget before it reaches the client. The charge happens on
// the bytes actually read, before Read returns them, so nothing leaves
// the gateway unaccounted. When the budget denies a chunk the stream
// ends with the denial error; bytes already delivered stay spent.
type budgetedReader struct {
	src    io.ReadCloser
	budget *Budget
	err    error
}

// NewReader wraps src so reads draw from the given budget.
func NewReader(src io.ReadCloser, budget *Budget) io.ReadCloser {
	return &budgetedReader{src: src, budget: budget}
}

func (r *budgetedReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	n, err := r.src.Read(p)
	if n > 0 {
		if cerr := r.budget.Consume(int64(n)); cerr != nil {
			r.err = cerr
			return 0, cerr
		}
	}
	if err != nil {
		r.err = err
	}
	return n, err
}

func (r *budgetedReader) Close() error {
	return r.src.Close()
}
