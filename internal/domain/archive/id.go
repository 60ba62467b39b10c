package archive

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLen = 6

// NewID returns "{unix-millis}-{6 lowercase alphanumerics}", e.g. 1761901131544-a2mnqr.
// The millisecond prefix keeps ids roughly sortable by creation time.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLen]
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
