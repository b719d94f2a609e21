package broadcast

import (
	"fmt"
	"strings"

	"ndr-radio/internal/models"
	"ndr-radio/internal/news"
)

// ScriptParams carries everything the newsreader script needs.
type ScriptParams struct {
	Station    string
	Newscaster string
	Location   string
	LocalTime  string
	Items      []models.NewsItem
	Weather    *news.Weather
	Brief      bool
}

// BuildScript renders the narration handed to the speech synthesizer.
// The brief form reads titles only; the full form reads each story's
// content and opens with the local time.
func BuildScript(p ScriptParams) string {
	var b strings.Builder

	if p.Brief {
		fmt.Fprintf(&b, "This is a 60-second %s Headline Update. I am %s. ", p.Station, p.Newscaster)
		if p.Weather != nil {
			fmt.Fprintf(&b, "Currently in %s, it's %s at %s. ", p.Weather.Location, p.Weather.Condition, p.Weather.Temp)
		}
		b.WriteString("Here are the latest headlines: ")
		for i, n := range p.Items {
			fmt.Fprintf(&b, "%d: %s. ", i+1, n.Title)
		}
		fmt.Fprintf(&b, "For the full stories, join us at the top of the hour. This is %s.", p.Station)
		return b.String()
	}

	fmt.Fprintf(&b, "This is %s with the %s Detailed News Bulletin. The time is %s in %s. ",
		p.Newscaster, p.Station, p.LocalTime, p.Location)
	if p.Weather != nil {
		fmt.Fprintf(&b, "Taking a look at the weather, in %s we are seeing %s with a temperature of %s. ",
			p.Weather.Location, p.Weather.Condition, p.Weather.Temp)
	}
	b.WriteString("Our top stories this hour: ")
	for _, n := range p.Items {
		fmt.Fprintf(&b, "%s. %s ", n.Title, n.Content)
	}
	fmt.Fprintf(&b, "That is the detailed news and weather for now. I am %s. Stay tuned for more sounds of home on %s.",
		p.Newscaster, p.Station)
	return b.String()
}
