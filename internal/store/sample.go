package store

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

var (
	meetingOpeners = []string{"Discussion about", "Meeting for", "Brainstorm"}

	phraseAdjectives = []string{
		"Adaptive", "Balanced", "Centralized", "Cross-platform", "Decentralized",
		"Digitized", "Ergonomic", "Focused", "Integrated", "Proactive",
		"Reactive", "Streamlined", "Synergistic", "Virtual",
	}
	phraseDescriptors = []string{
		"24/7", "asynchronous", "bottom-line", "client-driven", "dynamic",
		"executive", "global", "high-level", "mission-critical", "optimizing",
		"real-time", "scalable", "value-added", "zero-defect",
	}
	phraseNouns = []string{
		"architecture", "benchmark", "capability", "database", "firmware",
		"framework", "hierarchy", "infrastructure", "initiative", "interface",
		"matrix", "middleware", "paradigm", "portal", "synergy", "workforce",
	}

	sampleFirstNames = []string{
		"Ada", "Bertram", "Clementine", "Dashiell", "Elodie", "Fitzgerald",
		"Gwendolyn", "Horatio", "Imogen", "Jasper", "Kit", "Lavinia",
	}
	sampleLastNames = []string{
		"Abernathy", "Bartell", "Crona", "Dooley", "Emmerich", "Feeney",
		"Gislason", "Hartmann", "Koss", "Lindgren", "Moen", "Nader",
	}
	sampleTitles = []string{
		"Accountant", "Chief Widget Officer", "Data Wrangler", "Engineer",
		"Facilities Manager", "Henchperson", "Lab Technician", "Strategist",
	}
	sampleWeaknesses = []string{
		"Afraid of heights", "Allergic to paperwork", "Cannot resist a buffet",
		"Easily distracted by bananas", "Talks during movies", "Terrible at maps",
	}
	sampleTasks = []string{
		"Calibrate", "Deploy", "Polish", "Inventory", "Reorganize", "Test",
	}
)

func pick(options []string) string {
	return options[rand.IntN(len(options))]
}

// catchPhrase returns a phrase such as "Synergistic real-time paradigm".
func catchPhrase() string {
	return fmt.Sprintf("%s %s %s", pick(phraseAdjectives), pick(phraseDescriptors), pick(phraseNouns))
}

// NewMeeting generates a meeting at a random moment within a year after now.
func NewMeeting(now time.Time) Meeting {
	ahead := time.Duration(rand.Int64N(int64(365 * 24 * time.Hour)))
	date := now.Add(ahead).UTC().Truncate(time.Millisecond)
	return Meeting{
		Time: date.Format("15:04"),
		Date: date,
		Day:  date.Format("Mon Jan 02 2006"),
		Note: pick(meetingOpeners) + " " + catchPhrase(),
	}
}

// Populate adds ten minions with one work item each, ten ideas and three
// meetings.
func (s *MemoryStore) Populate() {
	for range 10 {
		m := s.InsertMinion(Minion{
			Name:       pick(sampleFirstNames) + " " + pick(sampleLastNames),
			Title:      pick(sampleTitles),
			Salary:     float64(40_000 + rand.IntN(60)*1_000),
			Weaknesses: pick(sampleWeaknesses),
		})
		phrase := catchPhrase()
		// The minion was inserted just above, so the reference holds.
		_, _ = s.InsertWork(Work{
			Title:       pick(sampleTasks) + " the " + phrase,
			Description: "Assigned to " + m.Name + ".",
			Hours:       float64(1 + rand.IntN(8)),
			MinionID:    m.ID,
		})
	}
	for range 10 {
		weeks := float64(4 + rand.IntN(48))
		revenue := math.Ceil(MinIdeaValue/weeks) + float64(rand.IntN(50_000))
		_, _ = s.InsertIdea(Idea{
			Name:          catchPhrase(),
			Description:   "A " + pick(phraseDescriptors) + " " + pick(phraseNouns) + " for the " + pick(phraseNouns) + ".",
			NumWeeks:      weeks,
			WeeklyRevenue: revenue,
		})
	}
	for range 3 {
		s.CreateMeeting()
	}
}
