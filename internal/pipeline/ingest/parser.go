package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"vigia/internal/models"
)

var (
	cardLinkPattern  = regexp.MustCompile(`class="new-card[^"]*"[^>]*href="([^"]+)"`)
	latitudePattern  = regexp.MustCompile(`latitude\s*=\s*(-?\d+\.\d+);`)
	longitudePattern = regexp.MustCompile(`longitude\s*=\s*(-?\d+\.\d+);`)
	imagePattern     = regexp.MustCompile(`<img[^>]+src="([^"]+)"`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	rowPattern       = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	cellPattern      = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)
	numericPattern   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// extractEndpoints pulls the detail-page paths out of a search results page.
// Order is preserved and duplicates dropped, so the newest listings come
// first the way the site sorts them.
func extractEndpoints(html string) []string {
	seen := make(map[string]struct{})
	var endpoints []string
	for _, m := range cardLinkPattern.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" {
			continue
		}
		if _, ok := seen[href]; ok {
			continue
		}
		seen[href] = struct{}{}
		endpoints = append(endpoints, href)
	}
	return endpoints
}

// listingIDFromEndpoint takes the numeric tail of a detail path, e.g.
// "/aluguel/df/aguas-claras/apartamento-123456" -> "123456".
func listingIDFromEndpoint(endpoint string) string {
	trimmed := strings.TrimRight(endpoint, "/")
	idx := strings.LastIndex(trimmed, "-")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	id := trimmed[idx+1:]
	if _, err := strconv.Atoi(id); err != nil {
		return ""
	}
	return id
}

// parseCoordinates reads the inline map variables from a detail page. Not
// every listing publishes them; the geocode resolver backfills the rest.
func parseCoordinates(html string) (lat, lng float64, ok bool) {
	latMatch := latitudePattern.FindStringSubmatch(html)
	lngMatch := longitudePattern.FindStringSubmatch(html)
	if latMatch == nil || lngMatch == nil {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latMatch[1], 64)
	lng, errLng := strconv.ParseFloat(lngMatch[1], 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// parseImageURLs collects the gallery images. The gallery container id marks
// where the photo markup starts; everything before it is navigation chrome.
func parseImageURLs(html string) []string {
	idx := strings.Index(html, `id="fotos-container"`)
	if idx < 0 {
		return nil
	}
	var images []string
	seen := make(map[string]struct{})
	for _, m := range imagePattern.FindAllStringSubmatch(html[idx:], -1) {
		src := strings.TrimSpace(m[1])
		if !strings.HasPrefix(src, "http") {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		images = append(images, src)
	}
	return images
}

// parsePrintTable reads the key/value table of the print-friendly detail
// page, which exposes the structured fields the styled page hides behind
// scripts. Keys are the site's Portuguese labels.
func parsePrintTable(html string) map[string]string {
	fields := make(map[string]string)
	for _, row := range rowPattern.FindAllStringSubmatch(html, -1) {
		cells := cellPattern.FindAllStringSubmatch(row[1], -1)
		if len(cells) < 2 {
			continue
		}
		key := cleanCell(cells[0][1])
		key = strings.TrimSuffix(key, ":")
		value := cleanCell(cells[1][1])
		if key == "" || value == "" {
			continue
		}
		fields[key] = value
	}
	return fields
}

func cleanCell(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.Join(strings.Fields(s), " ")
}

// parseNumeric extracts a numeric amount from a pt-BR formatted value like
// "R$ 2.500,00" or "65 m²". Dots are thousands separators, the comma is the
// decimal mark.
func parseNumeric(s string) float64 {
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "m²", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	m := numericPattern.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// buildListing assembles a Listing from the print-page fields and the
// detail-page extras.
func buildListing(id, url string, fields map[string]string, lat, lng float64, hasCoords bool, images []string) *models.Listing {
	listing := &models.Listing{
		ID:           id,
		Kind:         fields["Tipo"],
		Street:       fields["Endereço"],
		Neighborhood: fields["Bairro"],
		City:         fields["Cidade"],
		Bedrooms:     int(parseNumeric(fields["Quartos"])),
		Suites:       int(parseNumeric(fields["Suite"])),
		ParkingSpots: int(parseNumeric(fields["Garagem"])),
		Area:         parseNumeric(fields["Área Privativa"]),
		Rent:         parseNumeric(fields["Valor do Imóvel Aluguel"]),
		CondoFee:     parseNumeric(fields["Condomínio"]),
		URL:          url,
		Images:       images,
	}
	if hasCoords {
		listing.SetCoordinates(models.Coordinates{Lat: lat, Lng: lng})
	}
	return listing
}
