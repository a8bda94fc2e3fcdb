package seedfeed

import (
	"context"
	"crypto/rand"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
	"github.com/jhoekx/ovcup/pkg/logger"
)

// Age classes seeded into every generated event. D courses are shared by the
// women's classes and H courses by the men's, so scoring sees a full course
// field per category.
var ageClasses = []string{"D-16", "D21", "D35", "H-16", "H21", "H35"}

// courseForClass maps an age class onto the course its runners compete on.
func courseForClass(class string) string {
	return string(class[0]) + ":01"
}

var firstNamesByGender = map[byte][]string{
	'D': {"An", "Els", "Mia", "Lies", "Katrien", "Sofie", "Ilse", "Greet", "Veerle", "Hilde"},
	'H': {"Jan", "Piet", "Bert", "Koen", "Wim", "Stef", "Dirk", "Tom", "Geert", "Bart"},
}

var lastNames = []string{
	"Peeters", "Janssens", "Maes", "Jacobs", "Mertens", "Willems",
	"Claes", "Goossens", "Wouters", "De Smet",
}

var clubs = []string{
	"Antwerp Orienteers", "Borasca", "hamok", "K.O.L.", "Omega", "Trol",
}

var locations = []string{
	"Kalmthout", "Zoersel", "Herentals", "Genk", "Leuven", "Bruges",
}

// Finish time generation bounds, in seconds. Winners come in around 40
// minutes and the field spreads out behind them.
const (
	baseTimeSeconds   = 2400
	timeSpreadSeconds = 1800
	skipChancePercent = 15
	dnfChancePercent  = 5
)

// randomInt returns a random int in [0, n) using crypto/rand.
func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// seedRunner is one synthetic athlete competing through the season.
type seedRunner struct {
	name  string
	club  string
	class string
	// skill shifts this runner's expected time so standings are not flat.
	skill int
}

// generateRunners builds a stable pool of athletes, RunnersPerClass in each
// age class, with unique names across the whole pool.
func generateRunners(config *Config) []seedRunner {
	runners := make([]seedRunner, 0, len(ageClasses)*config.RunnersPerClass)
	used := make(map[string]struct{})

	for _, class := range ageClasses {
		firsts := firstNamesByGender[class[0]]
		for i := 0; i < config.RunnersPerClass; i++ {
			var name string
			for {
				name = firsts[randomInt(len(firsts))] + " " + lastNames[randomInt(len(lastNames))]
				if _, taken := used[name]; !taken {
					break
				}
			}
			used[name] = struct{}{}
			runners = append(runners, seedRunner{
				name:  name,
				club:  clubs[randomInt(len(clubs))],
				class: class,
				skill: randomInt(timeSpreadSeconds / 2),
			})
		}
	}

	return runners
}

// generateFeeds creates one feed per event, dated weekly through the season,
// with the shared runner pool competing in each.
func generateFeeds(ctx context.Context, config *Config, stats *Stats) ([]ingest.Feed, error) {
	logger.Get().Info(ctx, "generating feeds",
		logger.Int("numEvents", config.NumEvents),
		logger.Int("runnersPerClass", config.RunnersPerClass),
	)

	runners := generateRunners(config)
	// Unique suffix per run so re-seeding produces fresh feed keys instead
	// of duplicates.
	runID := uuid.New().String()[:8]

	seasonStart := time.Date(config.Season, time.March, 1, 10, 0, 0, 0, time.UTC)

	feeds := make([]ingest.Feed, config.NumEvents)
	for i := 0; i < config.NumEvents; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		feeds[i] = generateSingleFeed(i, runID, seasonStart, runners)
	}

	stats.FeedsGenerated = len(feeds)
	logger.Get().Info(ctx, "generated feeds successfully", logger.Int("count", len(feeds)))
	return feeds, nil
}

// generateSingleFeed builds the result feed of one event. Runners of classes
// sharing a course end up in the same category, ordered by finish time.
func generateSingleFeed(index int, runID string, seasonStart time.Time, runners []seedRunner) ingest.Feed {
	location := locations[randomInt(len(locations))]
	date := seasonStart.AddDate(0, 0, 7*index)

	type timedResult struct {
		runner  seedRunner
		seconds int
		status  string
	}
	byCourse := make(map[string][]timedResult)

	for _, r := range runners {
		if randomInt(100) < skipChancePercent {
			continue
		}
		status := "OK"
		if randomInt(100) < dnfChancePercent {
			status = "DNF"
		}
		course := courseForClass(r.class)
		byCourse[course] = append(byCourse[course], timedResult{
			runner:  r,
			seconds: baseTimeSeconds + r.skill + randomInt(timeSpreadSeconds),
			status:  status,
		})
	}

	categories := make(map[string]ingest.Category, len(byCourse))
	for course, field := range byCourse {
		sort.Slice(field, func(i, j int) bool { return field[i].seconds < field[j].seconds })

		results := make([]ingest.CourseResult, 0, len(field))
		position := 0
		for _, tr := range field {
			result := ingest.CourseResult{
				Name:     tr.runner.name,
				Club:     tr.runner.club,
				AgeClass: tr.runner.class,
				Status:   tr.status,
			}
			if tr.status == "OK" {
				position++
				result.Position = ingest.FlexInt(position)
				result.Time = ingest.Duration(tr.seconds)
			}
			results = append(results, result)
		}
		categories[course] = ingest.Category{Name: course, Results: results}
	}

	return ingest.Feed{
		Name:       "Seed " + location + " " + runID,
		Location:   location,
		Date:       date,
		Categories: categories,
	}
}
