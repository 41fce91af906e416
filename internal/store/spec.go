package store

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const defaultPrefix = "ideo"

// Spec describes where the images of one invocation go. Template is the
// -o value and may be empty; Timestamp is captured once per invocation so
// every target of a run is derived from the same value.
type Spec struct {
	Template  string
	Timestamp int64
}

// Target returns the destination of image index (1-based) out of total.
//
//	no template, total 1   ideo_<ts>.png
//	no template, total >1  ideo_<ts>_<index>.png
//	template, total 1      template
//	template, total >1     <stem>_<index><ext>
//
// ext is the extension of the last path element, possibly empty.
func (s Spec) Target(index, total int) string {
	if s.Template == "" {
		if total == 1 {
			return fmt.Sprintf("%s_%d.png", defaultPrefix, s.Timestamp)
		}
		return fmt.Sprintf("%s_%d_%d.png", defaultPrefix, s.Timestamp, index)
	}
	if total == 1 {
		return s.Template
	}
	ext := lo.Ternary(IsS3(s.Template), path.Ext(s.Template), filepath.Ext(s.Template))
	return strings.TrimSuffix(s.Template, ext) + "_" + strconv.Itoa(index) + ext
}

func (s Spec) Targets(total int) []string {
	targets := make([]string, total)
	for i := range targets {
		targets[i] = s.Target(i+1, total)
	}
	return targets
}
