package infrastructure

import (
	"net/url"
	"strings"

	"github.com/circley-tech/storefront/pkg/e"
)

// GetExtensionFromMIME возвращает расширение файла по MIME-типу изображения товара.
func GetExtensionFromMIME(mime string) (string, error) {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	case "image/gif":
		return "gif", nil
	default:
		return "", e.ErrUnsupportedMediaType
	}
}

// ObjectPrefix строит префикс ключей объектов товара из его названия.
func ObjectPrefix(productName string) string {
	name := strings.ToLower(strings.TrimSpace(productName))
	name = strings.Join(strings.Fields(name), "-")
	if name == "" {
		name = "unnamed"
	}
	return "products/" + url.PathEscape(name)
}
