package webui

import "errors"

// 返回给浏览器的错误文案（不包含内部细节）。
var (
	errUploadTooLarge = errors.New("uploaded file is too large")
	errBadContents    = errors.New("uploaded contents could not be decoded")
	errBadRow         = errors.New("invalid row")
	errBadEdit        = errors.New("invalid edit")
	errBadPayload     = errors.New("invalid payload")
)
