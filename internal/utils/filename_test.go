package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "report.pdf", "report.pdf"},
		{"spaces replaced", "my holiday photo.jpg", "my_holiday_photo.jpg"},
		{"path stripped", "/etc/passwd", "passwd"},
		{"windows path stripped", `C:\Users\me\doc.txt`, "doc.txt"},
		{"traversal stripped", "../../evil.sh", "evil.sh"},
		{"unicode falls back to stub", "精彩文章.md", "file.md"},
		{"empty falls back", "", "file"},
		{"only dots falls back", "...", "file"},
		{"keeps dashes and underscores", "a-b_c.tar.gz", "a-b_c.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
