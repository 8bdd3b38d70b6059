package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPageHTML = `
<html><body>
<a class="new-card card-listing" href="/aluguel/df/aguas-claras/apartamento-111111"><h2>Apto 1</h2></a>
<a class="new-card card-listing" href="/aluguel/df/taguatinga/apartamento-222222"><h2>Apto 2</h2></a>
<a class="new-card card-listing" href="/aluguel/df/aguas-claras/apartamento-111111"><h2>Apto 1 repetido</h2></a>
<a class="other-card" href="/anuncie">Anuncie</a>
</body></html>`

func TestExtractEndpoints(t *testing.T) {
	endpoints := extractEndpoints(resultsPageHTML)

	assert.Equal(t, []string{
		"/aluguel/df/aguas-claras/apartamento-111111",
		"/aluguel/df/taguatinga/apartamento-222222",
	}, endpoints)
}

func TestExtractEndpoints_NoCards(t *testing.T) {
	assert.Empty(t, extractEndpoints("<html><body><p>manutenção</p></body></html>"))
}

func TestListingIDFromEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"/aluguel/df/aguas-claras/apartamento-111111", "111111"},
		{"/aluguel/df/taguatinga/casa-condominio-98765", "98765"},
		{"/aluguel/df/aguas-claras/apartamento-111111/", "111111"},
		{"/aluguel/df/sem-id-", ""},
		{"/aluguel/df/apartamento-abc", ""},
		{"semseparador", ""},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, listingIDFromEndpoint(tt.endpoint))
		})
	}
}

func TestParseCoordinates(t *testing.T) {
	html := `<script>
		var latitude = -15.834916;
		var longitude = -48.052345;
	</script>`

	lat, lng, ok := parseCoordinates(html)
	require.True(t, ok)
	assert.Equal(t, -15.834916, lat)
	assert.Equal(t, -48.052345, lng)
}

func TestParseCoordinates_Missing(t *testing.T) {
	_, _, ok := parseCoordinates("<html><body>sem mapa</body></html>")
	assert.False(t, ok)
}

func TestParseImageURLs(t *testing.T) {
	html := `
	<img src="https://cdn.example.com/logo.png">
	<div id="fotos-container">
		<img src="https://cdn.example.com/f1.jpg">
		<img src="https://cdn.example.com/f2.jpg">
		<img src="https://cdn.example.com/f1.jpg">
		<img src="/relative/ignored.jpg">
	</div>`

	images := parseImageURLs(html)
	assert.Equal(t, []string{
		"https://cdn.example.com/f1.jpg",
		"https://cdn.example.com/f2.jpg",
	}, images)
}

func TestParseImageURLs_NoGallery(t *testing.T) {
	assert.Nil(t, parseImageURLs(`<img src="https://cdn.example.com/logo.png">`))
}

const printPageHTML = `
<table>
	<tr><td><b>Tipo:</b></td><td>Apartamento</td></tr>
	<tr><td>Endereço:</td><td>Rua das Pitangueiras 10</td></tr>
	<tr><td>Bairro:</td><td>&nbsp;Águas Claras </td></tr>
	<tr><td>Cidade:</td><td>Brasília</td></tr>
	<tr><td>Quartos:</td><td>2</td></tr>
	<tr><td>Suite:</td><td>1</td></tr>
	<tr><td>Garagem:</td><td>1</td></tr>
	<tr><td>Área Privativa:</td><td>65,5 m²</td></tr>
	<tr><td>Valor do Imóvel Aluguel:</td><td>R$ 2.500,00</td></tr>
	<tr><td>Condomínio:</td><td>R$ 650,50</td></tr>
	<tr><td>só uma célula</td></tr>
</table>`

func TestParsePrintTable(t *testing.T) {
	fields := parsePrintTable(printPageHTML)

	assert.Equal(t, "Apartamento", fields["Tipo"])
	assert.Equal(t, "Rua das Pitangueiras 10", fields["Endereço"])
	assert.Equal(t, "Águas Claras", fields["Bairro"])
	assert.Equal(t, "2", fields["Quartos"])
	assert.Equal(t, "R$ 2.500,00", fields["Valor do Imóvel Aluguel"])
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"R$ 2.500,00", 2500},
		{"R$ 650,50", 650.5},
		{"65,5 m²", 65.5},
		{"2", 2},
		{"", 0},
		{"sob consulta", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNumeric(tt.input))
		})
	}
}

func TestBuildListing(t *testing.T) {
	fields := parsePrintTable(printPageHTML)

	listing := buildListing(
		"111111",
		"https://www.dfimoveis.com.br/aluguel/df/aguas-claras/apartamento-111111",
		fields,
		-15.834916, -48.052345, true,
		[]string{"https://cdn.example.com/f1.jpg"},
	)

	assert.Equal(t, "111111", listing.ID)
	assert.Equal(t, "Apartamento", listing.Kind)
	assert.Equal(t, "Águas Claras", listing.Neighborhood)
	assert.Equal(t, 2, listing.Bedrooms)
	assert.Equal(t, 1, listing.Suites)
	assert.Equal(t, 1, listing.ParkingSpots)
	assert.Equal(t, 65.5, listing.Area)
	assert.Equal(t, 2500.0, listing.Rent)
	assert.Equal(t, 650.5, listing.CondoFee)

	coords, ok := listing.Coordinates()
	require.True(t, ok)
	assert.Equal(t, -15.834916, coords.Lat)
}

func TestBuildListing_WithoutCoordinates(t *testing.T) {
	listing := buildListing("222222", "https://example.com", map[string]string{}, 0, 0, false, nil)

	_, ok := listing.Coordinates()
	assert.False(t, ok)
}
