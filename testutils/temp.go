package testutils

import (
	"fmt"
	"os"
	"testing"

	"github.com/guaranteeops/reconbot/utils"
)

func tempFile(t testing.TB, content, filePattern string) (fileName string) {
	tmpDir := t.TempDir()
	f, err := os.CreateTemp(tmpDir, filePattern)
	if err != nil {
		t.Error("Could not create temp file", "error", err)
		t.FailNow()
	}
	defer utils.Close(f, fmt.Sprintf("testutils.tempFile %s", filePattern))
	fileName = f.Name()
	_, err = f.Write([]byte(content))
	if err != nil {
		t.Error("Problem when writing file content", "error", err)
	}
	return fileName
}

func TempYamlFile(t testing.TB, content string) (fileName string) {
	return tempFile(t, content, "*.yaml")
}

func TempPemFile(t testing.TB, content string) (fileName string) {
	return tempFile(t, content, "*.pem")
}
