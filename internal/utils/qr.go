package utils

import (
	qrcode "github.com/skip2/go-qrcode"
)

// PairingQR renders a terminal QR code for the bridge URL so client apps on
// the same network can be pointed at the service without typing it out.
func PairingQR(url string) (string, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
