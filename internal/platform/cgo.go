package platform

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
)

// GeneratedBuildTag gates generated link files together with cgo and the target OS.
const GeneratedBuildTag = "dcv"

var linkFileTemplate = template.Must(template.New("link").Parse(`// Code generated by pobar-build link; DO NOT EDIT.

//go:build {{.Tag}} && cgo && {{.OS}}

package {{.Package}}

// {{.Summary}}

/*
#cgo CFLAGS: {{.CFLAGS}}
#cgo CXXFLAGS: {{.CFLAGS}} -std=c++11
#cgo LDFLAGS: {{.LDFLAGS}}
*/
import "C"
`))

// LinkFileName is the name of the generated link file for p.
func (p Profile) LinkFileName() string {
	return "zz_link_" + p.OS + ".go"
}

// RenderLinkFile renders a gofmt'ed Go file holding the cgo directives for p.
// sdkRoot is usually expressed relative to ${SRCDIR}.
func (p Profile) RenderLinkFile(pkg, sdkRoot string) ([]byte, error) {
	var buf bytes.Buffer
	err := linkFileTemplate.Execute(&buf, map[string]string{
		"Tag":     GeneratedBuildTag,
		"OS":      p.OS,
		"Package": pkg,
		"Summary": p.String(),
		"CFLAGS":  strings.Join(p.CFLAGS(sdkRoot), " "),
		"LDFLAGS": strings.Join(p.LDFLAGS(sdkRoot), " "),
	})
	if err != nil {
		return nil, fmt.Errorf("render link file for %s: %w", p.OS, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format link file for %s: %w", p.OS, err)
	}
	return src, nil
}
