package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/models"
)

// Milestone is one point on a book's reading timeline.
type Milestone struct {
	Key   string    `json:"key" yaml:"key"`
	Label string    `json:"label" yaml:"label"`
	At    time.Time `json:"at" yaml:"at"`
	Meta  string    `json:"meta" yaml:"meta"`
}

// Timeline summarizes a book's sessions and annotations.
type Timeline struct {
	Sessions    int         `json:"sessions" yaml:"sessions"`
	Annotations int         `json:"annotations" yaml:"annotations"`
	Milestones  []Milestone `json:"milestones" yaml:"milestones"`
	NoData      bool        `json:"no_data" yaml:"no_data"`
}

// TimelineInput carries a book's activity. FirstSession and LastSession
// override the ones derived from Sessions when the source reports them
// separately; TotalSessions likewise overrides the session count.
type TimelineInput struct {
	Sessions      []models.Session
	Annotations   []models.Annotation
	TotalSessions int
	FirstSession  *models.Session
	LastSession   *models.Session
}

// Milestones derives the first open, first annotation and last open of a
// book. Annotation timestamps without a zone are read in loc.
func Milestones(in TimelineInput, loc *time.Location) Timeline {
	if loc == nil {
		loc = time.UTC
	}
	tl := Timeline{
		Sessions:    in.TotalSessions,
		Annotations: len(in.Annotations),
		NoData:      len(in.Sessions) == 0 && len(in.Annotations) == 0,
	}
	if tl.Sessions == 0 {
		tl.Sessions = len(in.Sessions)
	}
	if tl.NoData {
		return tl
	}

	var opened []models.Session
	for _, s := range in.Sessions {
		if s.StartTime > 0 {
			opened = append(opened, s)
		}
	}
	sort.SliceStable(opened, func(i, j int) bool { return opened[i].StartTime < opened[j].StartTime })

	first := in.FirstSession
	if first == nil || first.StartTime <= 0 {
		first = nil
		if len(opened) > 0 {
			first = &opened[0]
		}
	}
	last := in.LastSession
	if last == nil || last.StartTime <= 0 {
		last = nil
		if len(opened) > 0 {
			last = &opened[len(opened)-1]
		}
	}

	if first != nil {
		tl.Milestones = append(tl.Milestones, Milestone{
			Key:   "first-open",
			Label: "First open",
			At:    time.Unix(first.StartTime, 0).In(loc),
			Meta:  sessionMeta(*first),
		})
	}

	type dated struct {
		a models.Annotation
		t time.Time
	}
	var anns []dated
	for _, a := range in.Annotations {
		if t, ok := ParseTimestamp(a.Timestamp(), loc); ok {
			anns = append(anns, dated{a: a, t: t})
		}
	}
	sort.SliceStable(anns, func(i, j int) bool { return anns[i].t.Before(anns[j].t) })
	if len(anns) > 0 {
		a := anns[0].a
		meta := string(a.Kind())
		if a.PageNo != "" {
			meta += " · p." + a.PageNo
		}
		if a.Chapter != "" {
			meta += " · " + a.Chapter
		}
		tl.Milestones = append(tl.Milestones, Milestone{
			Key:   "first-annotation",
			Label: "First annotation",
			At:    anns[0].t,
			Meta:  meta,
		})
	}

	if last != nil {
		tl.Milestones = append(tl.Milestones, Milestone{
			Key:   "last-open",
			Label: "Last open",
			At:    time.Unix(last.StartTime, 0).In(loc),
			Meta:  sessionMeta(*last),
		})
	}
	return tl
}

func sessionMeta(s models.Session) string {
	var b strings.Builder
	if s.Page > 0 {
		fmt.Fprintf(&b, "p.%d", s.Page)
	} else {
		b.WriteString("page ?")
	}
	if s.TotalPages > 0 {
		fmt.Fprintf(&b, " / %d", s.TotalPages)
	}
	b.WriteString(" · ")
	b.WriteString(FormatDuration(s.Duration))
	return b.String()
}
