package utils

import (
	"path/filepath"
	"strings"
)

// SourceExt is the extension stripped from source files when naming outputs.
const SourceExt = ".b"

// TargetExt is appended to generated program names.
const TargetExt = ".py"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OutputPath names the generated program for inPath: a trailing ".b" is
// dropped and ".py" appended. The result lives in outDir, or next to the
// input when outDir is empty.
func OutputPath(inPath, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(inPath), SourceExt) + TargetExt
	if outDir == "" {
		outDir = filepath.Dir(inPath)
	}
	return filepath.Join(outDir, name)
}
