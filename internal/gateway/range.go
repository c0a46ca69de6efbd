package gateway

import (
	"strconv"
	"strings"

	"github.com/mediagate/mediagate/pkg/gateerrors"
	"github.com/mediagate/mediagate/pkg/types"
)

// ParseRangeHeader parses a Range request header into a single byte
// range. Only the form "bytes=<start>-" and "bytes=<start>-<end>" is
// accepted. Multi-range sets, suffix ranges ("bytes=-500") and anything
// non-numeric are rejected with RANGE_UNSATISFIABLE. An empty header
// means no range was requested and yields (nil, nil).
func ParseRangeHeader(header string) (*types.ByteRange, error) {
	if header == "" {
		return nil, nil
	}

	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return nil, unsatisfiable(header, "unsupported range unit")
	}

	spec := header[len(prefix):]
	if strings.Contains(spec, ",") {
		return nil, unsatisfiable(header, "multi-range requests are not supported")
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return nil, unsatisfiable(header, "malformed range spec")
	}

	if startStr == "" {
		// Suffix ranges (bytes=-500) are deliberately rejected rather
		// than resolved against the object size.
		return nil, unsatisfiable(header, "suffix ranges are not supported")
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, unsatisfiable(header, "invalid range start")
	}

	if endStr == "" {
		return types.NewOpenByteRange(start), nil
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < 0 {
		return nil, unsatisfiable(header, "invalid range end")
	}
	if end < start {
		return nil, unsatisfiable(header, "range end before start")
	}

	return types.NewByteRange(start, end), nil
}

func unsatisfiable(header, reason string) error {
	return gateerrors.New(gateerrors.ErrCodeRangeUnsatisfiable, reason+": "+header).
		WithComponent("gateway").WithOperation("ParseRangeHeader")
}
