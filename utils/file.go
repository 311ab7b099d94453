package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const tmpSuffix = ".%s.tmp"

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(path))
	return
}

// 输出文件的临时路径：默认与输出同目录，便于最终改名
func TempSibling(out, tmpDir string) string {
	dir := filepath.Dir(out)
	if tmpDir != "" {
		dir = tmpDir
	}
	return filepath.Join(dir, filepath.Base(out)+fmt.Sprintf(tmpSuffix, uuid.NewString()))
}

// 按输入文件名生成输出路径，如 dem.tif -> outDir/dem.txt
func DeriveOutput(in, outDir, ext string) string {
	if outDir == "" {
		outDir = filepath.Dir(in)
	}
	return filepath.Join(outDir, GetFilenameWithoutExt(in)+ext)
}

func IsFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func IsDirectory(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// 将临时文件移动到最终位置，跨文件系统（EXDEV）时先复制到目标同目录再改名
func MoveFile(src, dst string) (err error) {
	if err = os.Rename(src, dst); err == nil || !errors.Is(err, syscall.EXDEV) {
		return
	}
	tmp := TempSibling(dst, "")
	if err = copyFile(src, tmp); err != nil {
		os.Remove(tmp)
		return
	}
	if err = os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return
	}
	return os.Remove(src)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return
	}
	_, err = io.Copy(out, in)
	return multierr.Combine(err, out.Sync(), out.Close())
}
