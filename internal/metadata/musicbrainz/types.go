package musicbrainz

// searchResponse is the raw release-group search response.
type searchResponse struct {
	Count         int               `json:"count"`
	ReleaseGroups []rawReleaseGroup `json:"release-groups"`
}

type rawReleaseGroup struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PrimaryType  string `json:"primary-type"`
	Score        int    `json:"score"`
	ArtistCredit []struct {
		Name string `json:"name"`
	} `json:"artist-credit"`
}
