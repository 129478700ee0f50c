package gopublisher

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeUTF16 decodes UTF-16LE bytes. A trailing odd byte is dropped.
func decodeUTF16(b []byte) (string, error) {
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	out, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	return string(out), nil
}

// lcidInfo is what the decoder needs to know about a Windows locale id.
type lcidInfo struct {
	tag     string
	charset encoding.Encoding
}

var lcids = map[uint16]lcidInfo{
	0x0401: {"ar-SA", charmap.Windows1256},
	0x0404: {"zh-TW", traditionalchinese.Big5},
	0x0405: {"cs-CZ", charmap.Windows1250},
	0x0406: {"da-DK", charmap.Windows1252},
	0x0407: {"de-DE", charmap.Windows1252},
	0x0408: {"el-GR", charmap.Windows1253},
	0x0409: {"en-US", charmap.Windows1252},
	0x040B: {"fi-FI", charmap.Windows1252},
	0x040C: {"fr-FR", charmap.Windows1252},
	0x040D: {"he-IL", charmap.Windows1255},
	0x040E: {"hu-HU", charmap.Windows1250},
	0x0410: {"it-IT", charmap.Windows1252},
	0x0411: {"ja-JP", japanese.ShiftJIS},
	0x0412: {"ko-KR", korean.EUCKR},
	0x0413: {"nl-NL", charmap.Windows1252},
	0x0414: {"nb-NO", charmap.Windows1252},
	0x0415: {"pl-PL", charmap.Windows1250},
	0x0416: {"pt-BR", charmap.Windows1252},
	0x0419: {"ru-RU", charmap.Windows1251},
	0x041D: {"sv-SE", charmap.Windows1252},
	0x041E: {"th-TH", charmap.Windows874},
	0x041F: {"tr-TR", charmap.Windows1254},
	0x0422: {"uk-UA", charmap.Windows1251},
	0x0425: {"et-EE", charmap.Windows1257},
	0x042A: {"vi-VN", charmap.Windows1258},
	0x0804: {"zh-CN", simplifiedchinese.GBK},
	0x0809: {"en-GB", charmap.Windows1252},
	0x0816: {"pt-PT", charmap.Windows1252},
	0x0C0A: {"es-ES", charmap.Windows1252},
}

// languageTag maps a locale id to a BCP 47 tag; unknown ids are und.
func languageTag(lcid uint16) language.Tag {
	info, ok := lcids[lcid]
	if !ok {
		return language.Und
	}
	return language.Make(info.tag)
}

// languageProperties returns the fo:language / fo:country pair for lcid.
func languageProperties(lcid uint16) (lang, country string, ok bool) {
	tag := languageTag(lcid)
	if tag == language.Und {
		return "", "", false
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return base.String(), "", true
	}
	return base.String(), region.String(), true
}

// codePage returns the single-byte text encoding of lcid, Windows-1252
// when unknown.
func codePage(lcid uint16) encoding.Encoding {
	if info, ok := lcids[lcid]; ok {
		return info.charset
	}
	return charmap.Windows1252
}

// decodeCodePage decodes legacy single/double-byte text.
func decodeCodePage(b []byte, lcid uint16) (string, error) {
	out, err := codePage(lcid).NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode code page text: %w", err)
	}
	return string(out), nil
}
