package catalog

import "strings"

// allowedImageExtensions is the allow-list applied to every image URL coming
// from the remote catalog. The upstream API is known to return rows with
// dead or bogus image links.
var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// placeholderName is a known bad-data pattern: the upstream seed data leaves
// literal "string" placeholders in category names.
const placeholderName = "string"

func hasAllowedExtension(url string) bool {
	for _, ext := range allowedImageExtensions {
		if strings.HasSuffix(url, ext) {
			return true
		}
	}
	return false
}

func hasAllowedExtensionFold(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range allowedImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func filterImages(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if hasAllowedExtension(u) {
			out = append(out, u)
		}
	}
	return out
}

// NormalizeProducts cleans a raw product page: images failing the extension
// allow-list are dropped from each product, then products with a blank title,
// a negative price, or no surviving images are rejected, and duplicate IDs
// keep only their first occurrence. Source order is preserved.
func NormalizeProducts(in []Product) []Product {
	out := make([]Product, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for _, p := range in {
		p.Images = filterImages(p.Images)
		if strings.TrimSpace(p.Title) == "" || p.Price.IsNegative() || len(p.Images) == 0 {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NormalizeCategories cleans raw categories: the name must be non-blank and
// must not contain the placeholder token (case-insensitive), the image URL
// must be non-blank with an allowed extension (case-insensitive), and
// duplicate IDs keep only their first occurrence.
func NormalizeCategories(in []Category) []Category {
	out := make([]Category, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for _, c := range in {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), placeholderName) {
			continue
		}
		if strings.TrimSpace(c.Image) == "" || !hasAllowedExtensionFold(c.Image) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
