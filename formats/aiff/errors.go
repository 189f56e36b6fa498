// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the input is not a readable AIFF/AIFC container
	ErrNotAiffFile = errors.New("not an AIFF file")

	ErrUnsupportedBitDepth = errors.New("unsupported AIFF bit depth")

	// ErrUnsupportedAiffLayout indicates a missing or unusable COMM chunk
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
