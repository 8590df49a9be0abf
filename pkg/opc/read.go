package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/uxwrite/docxhtml/internal/docxerr"
)

// Default limits for zip-bomb protection: a maliciously crafted archive
// must not be able to exhaust memory through a huge or deeply compressed
// part.
const (
	DefaultMaxTotalSize        int64 = 500 * 1024 * 1024
	DefaultMaxPartSize         int64 = 100 * 1024 * 1024
	DefaultMaxPartCount        int   = 10000
	DefaultMaxCompressionRatio int64 = 100
)

// OpenOptions configures the safety limits applied while opening a package.
// The zero value applies the defaults above; set a field to -1 to disable
// that particular check.
type OpenOptions struct {
	MaxTotalSize        int64
	MaxPartSize         int64
	MaxPartCount        int
	MaxCompressionRatio int64
}

func (o *OpenOptions) applyDefaults() {
	if o.MaxTotalSize == 0 {
		o.MaxTotalSize = DefaultMaxTotalSize
	}
	if o.MaxPartSize == 0 {
		o.MaxPartSize = DefaultMaxPartSize
	}
	if o.MaxPartCount == 0 {
		o.MaxPartCount = DefaultMaxPartCount
	}
	if o.MaxCompressionRatio == 0 {
		o.MaxCompressionRatio = DefaultMaxCompressionRatio
	}
}

// OpenZip opens an OPC package from a zip file on disk.
func OpenZip(filePath string) (*Package, error) {
	return OpenZipWithOptions(filePath, nil)
}

// OpenZipWithOptions is OpenZip with configurable safety limits.
func OpenZipWithOptions(filePath string, opts *OpenOptions) (*Package, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, docxerr.WrapPath("opc", "open", filePath, err)
	}
	defer r.Close()
	return extractPackage(r.File, opts, filePath)
}

// OpenMemory opens an OPC package from an in-memory zip archive.
func OpenMemory(data []byte) (*Package, error) {
	return OpenMemoryWithOptions(data, nil)
}

// OpenMemoryWithOptions is OpenMemory with configurable safety limits.
func OpenMemoryWithOptions(data []byte, opts *OpenOptions) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, docxerr.WrapPath("opc", "open", "<memory>", err)
	}
	return extractPackage(zr.File, opts, "<memory>")
}

func extractPackage(files []*zip.File, opts *OpenOptions, source string) (*Package, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	opts.applyDefaults()

	if opts.MaxPartCount > 0 && len(files) > opts.MaxPartCount {
		return nil, docxerr.WrapPath("opc", "open", source,
			fmt.Errorf("archive contains %d parts, exceeds limit of %d", len(files), opts.MaxPartCount))
	}

	pkg := &Package{
		parts: make(map[string]*fileEntry),
		rels:  make(map[string][]Relationship),
	}

	var totalSize int64
	for _, f := range files {
		if err := validatePart(f, opts, &totalSize, source); err != nil {
			return nil, err
		}
		data, err := extractPartData(f, source)
		if err != nil {
			return nil, err
		}
		pkg.parts[f.Name] = &fileEntry{data: data, header: &f.FileHeader}
		pkg.partOrder = append(pkg.partOrder, f.Name)
	}

	if !pkg.HasPart(contentTypesPath) {
		return nil, docxerr.WrapPath("opc", "open", source, fmt.Errorf("missing %s", contentTypesPath))
	}
	if _, err := pkg.loadContentTypes(); err != nil {
		return nil, err
	}

	return pkg, nil
}

func isValidZipPath(name string) bool {
	if name == "" || filepath.IsAbs(name) {
		return false
	}
	cleaned := filepath.Clean(name)
	if strings.HasPrefix(cleaned, "..") {
		return false
	}
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return false
		}
	}
	return true
}

func validatePart(f *zip.File, opts *OpenOptions, totalSize *int64, source string) error {
	if !isValidZipPath(f.Name) {
		return docxerr.WrapPath("opc", "open", f.Name, fmt.Errorf("invalid path: potential directory traversal"))
	}
	if f.UncompressedSize64 > math.MaxInt64 {
		return docxerr.WrapPath("opc", "open", f.Name, fmt.Errorf("part size %d exceeds maximum supported size", f.UncompressedSize64))
	}
	size := int64(f.UncompressedSize64)
	if opts.MaxPartSize > 0 && size > opts.MaxPartSize {
		return docxerr.WrapPath("opc", "open", f.Name, fmt.Errorf("part size %d exceeds limit of %d bytes", size, opts.MaxPartSize))
	}
	if opts.MaxCompressionRatio > 0 && f.CompressedSize64 > 0 && f.Method != zip.Store {
		ratio := size / int64(f.CompressedSize64)
		if ratio > opts.MaxCompressionRatio {
			return docxerr.WrapPath("opc", "open", f.Name, fmt.Errorf("compression ratio %d exceeds limit of %d (potential zip bomb)", ratio, opts.MaxCompressionRatio))
		}
	}
	*totalSize += size
	if opts.MaxTotalSize > 0 && *totalSize > opts.MaxTotalSize {
		return docxerr.WrapPath("opc", "open", source, fmt.Errorf("total uncompressed size exceeds limit of %d bytes", opts.MaxTotalSize))
	}
	return nil
}

func extractPartData(f *zip.File, source string) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, docxerr.WrapPath("opc", "open", source+"/"+f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, docxerr.WrapPath("opc", "open", source+"/"+f.Name, err)
	}
	return data, nil
}
