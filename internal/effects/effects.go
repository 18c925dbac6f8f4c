package effects

import (
	"fmt"
	"strings"

	"github.com/ivlev/knn2video/internal/config"
	"github.com/ivlev/knn2video/internal/system"
)

type Effect interface {
	GenerateFilter(params config.SegmentParams) string
}

// DefaultEffect fades every scene in and out when scenes are simply cut
// together. With an xfade transition the fades are left to Concatenate.
type DefaultEffect struct{}

func (e *DefaultEffect) GenerateFilter(p config.SegmentParams) string {
	var chain []string

	if crossless(p.TransitionType) && p.FadeDuration > 0 && p.Duration > 0 {
		fade := p.FadeDuration
		if fade > p.Duration/2 {
			fade = p.Duration / 2
		}
		chain = append(chain,
			fmt.Sprintf("fade=t=in:st=0:d=%.3f", fade),
			fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", p.Duration-fade, fade),
		)
	}

	if p.Debug && system.CheckFilterSupport("drawtext") {
		chain = append(chain, fmt.Sprintf(
			"drawtext=text='Scene %d %s | %%{pts\\:hms}':x=10:y=10:fontsize=24:fontcolor=yellow:box=1:boxcolor=black@0.5",
			p.SceneIndex+1, p.SceneName))
	}

	if len(chain) == 0 {
		return "null"
	}
	return strings.Join(chain, ",")
}

func crossless(transition string) bool {
	return transition == "" || transition == "none"
}
