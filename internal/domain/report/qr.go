package report

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 128

// accessionQR renders the accession number as a PNG QR code packed into a
// data URI, ready for an <img> src. A failed encode degrades to an empty
// string, the report renders without the code.
func accessionQR(accession string) string {
	png, err := qrcode.Encode(accession, qrcode.Medium, qrSize)
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
