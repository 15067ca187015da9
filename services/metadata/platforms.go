package metadata

import (
	"net/url"
	"strings"

	"cinemuse/models"
)

type platform struct {
	name     string
	logoPath string
	// searchURL builds a search-results link for an already-encoded title.
	searchURL func(encodedTitle string) string
}

// platforms is the fixed streaming table. Links are search pages, not deep
// links; availability is never checked.
var platforms = []platform{
	{"Netflix", "/t2yyOv40HZeVlLjYsCsPHnWLk4W.jpg", func(q string) string { return "https://www.netflix.com/search?q=" + q }},
	{"YouTube", "/hTCNs222p0wpcp6b24I2zI4962Z.jpg", func(q string) string { return "https://www.youtube.com/results?search_query=" + q }},
	{"Tencent Video", "/y2h0h2sYn2f7rvvG3j52402T6z6.jpg", func(q string) string { return "https://v.qq.com/x/search/?q=" + q }},
	{"iQIYI", "/2wOYsEprY7fO0H1ll2Mv2Qc5b2E.jpg", func(q string) string { return "https://www.iq.com/search?query=" + q }},
	{"Youku", "/h59J22j5L1s2Kx1L2aL05g5O6R.jpg", func(q string) string { return "https://so.youku.com/search_video/q_" + q }},
	{"Bilibili", "/3g7h24ds923A390aC0EVB1L2vSl.jpg", func(q string) string { return "https://search.bilibili.com/all?keyword=" + q }},
	{"Mango TV", "/7BUH3bPW2o1M5y2i7g02HPSVj54.jpg", func(q string) string { return "https://so.mgtv.com/so?k=" + q }},
}

// componentUnescaper restores the characters encodeURIComponent leaves alone
// and spells spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s the way a browser's encodeURIComponent does.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// streamingLinks projects every platform onto the movie title.
func streamingLinks(title, imageBase string) []models.StreamingPlatform {
	encoded := encodeComponent(title)
	links := make([]models.StreamingPlatform, 0, len(platforms))
	for _, p := range platforms {
		links = append(links, models.StreamingPlatform{
			Name:    p.name,
			URL:     p.searchURL(encoded),
			LogoURL: buildTMDBImage(imageBase, p.logoPath, tmdbLogoSize),
		})
	}
	return links
}
