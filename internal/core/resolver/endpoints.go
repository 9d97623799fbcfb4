package resolver

// Endpoints holds the upstream service URLs. Tests point them at local servers.
type Endpoints struct {
	TikWM             string
	TikMate           string
	Analyzer          string
	SaveFrom          string
	FBDownloader      string
	SaveIG            string
	InstagramRapidAPI string
	InstaDownloader   string
	LoaderTo          string
	YT5s              string
}

// DefaultEndpoints returns the production service URLs
func DefaultEndpoints() Endpoints {
	return Endpoints{
		TikWM:             "https://www.tikwm.com/api/",
		TikMate:           "https://api.tikmate.app/api/lookup",
		Analyzer:          "https://y2mate.com/mates/analyzeV2/ajax",
		SaveFrom:          "https://api.savefrom.net/service/1/from",
		FBDownloader:      "https://fbdownloader.net/api",
		SaveIG:            "https://saveig.app/api/ajaxSearch",
		InstagramRapidAPI: "https://instagram-downloader-download-instagram-videos-stories.p.rapidapi.com/index",
		InstaDownloader:   "https://api.insta-downloader.org/",
		LoaderTo:          "https://loader.to/ajax/download.php",
		YT5s:              "https://yt5s.com/api/ajaxSearch",
	}
}

// withDefaults fills empty fields from DefaultEndpoints
func (e Endpoints) withDefaults() Endpoints {
	def := DefaultEndpoints()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&e.TikWM, def.TikWM)
	fill(&e.TikMate, def.TikMate)
	fill(&e.Analyzer, def.Analyzer)
	fill(&e.SaveFrom, def.SaveFrom)
	fill(&e.FBDownloader, def.FBDownloader)
	fill(&e.SaveIG, def.SaveIG)
	fill(&e.InstagramRapidAPI, def.InstagramRapidAPI)
	fill(&e.InstaDownloader, def.InstaDownloader)
	fill(&e.LoaderTo, def.LoaderTo)
	fill(&e.YT5s, def.YT5s)
	return e
}
