package utils

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// UTF-8 string 转 GBK
func Utf8StrToGbk(s string) (d string, e error) {
	reader := transform.NewReader(strings.NewReader(s), simplifiedchinese.GBK.NewEncoder())
	t, e := io.ReadAll(reader)
	if e != nil {
		return
	}
	d = string(t)
	return
}

// 按名称查找文本编码，UTF-8返回nil
func LookupEncoding(name string) (enc encoding.Encoding, ok bool) {
	switch strings.ToUpper(strings.ReplaceAll(name, "_", "-")) {
	case "", "UTF-8", "UTF8":
		return nil, true
	case "LATIN1", "ISO-8859-1":
		return charmap.ISO8859_1, true
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, true
	case "GBK":
		return simplifiedchinese.GBK, true
	}
	return nil, false
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// 将写入的UTF-8文本转为enc编码后写入w，enc为nil时原样写入
// Close只冲刷转换缓冲，不关闭w
func EncodingWriter(w io.Writer, enc encoding.Encoding) io.WriteCloser {
	if enc == nil {
		return nopWriteCloser{w}
	}
	return transform.NewWriter(w, enc.NewEncoder())
}

func PurifyForUtf8(s string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "")
}
