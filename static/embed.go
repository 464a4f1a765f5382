package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed *.html
var embedded embed.FS

func EmbeddedFS() fs.FS {
	return embedded
}
