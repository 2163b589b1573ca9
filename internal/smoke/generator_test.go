package smoke

import (
	"context"
	"testing"

	"github.com/okian/fplcoach/internal/adapters/repository"
	"github.com/okian/fplcoach/internal/domain/model"
	"github.com/okian/fplcoach/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestGenerateDataset(t *testing.T) {
	Convey("Given a generator config", t, func() {
		config := &Config{Players: 60, Teams: 5, Events: 2, Seed: 7}

		Convey("When generating twice with the same seed", func() {
			a, errA := GenerateDataset(config)
			b, errB := GenerateDataset(config)

			Convey("Then the tables are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Players.Rows, ShouldResemble, b.Players.Rows)
				So(a.Fixtures.Rows, ShouldResemble, b.Fixtures.Rows)
				So(a.Predictions.Rows, ShouldResemble, b.Predictions.Rows)
			})
		})

		Convey("When decoding the generated players", func() {
			ds, err := GenerateDataset(config)
			So(err, ShouldBeNil)
			players, err := model.PlayersFromTable(ds.Players)
			So(err, ShouldBeNil)

			Convey("Then every player has a team and a position", func() {
				So(players, ShouldHaveLength, 60)
				counts := map[model.Position]int{}
				for _, p := range players {
					So(p.TeamID, ShouldBeBetweenOrEqual, 1, 5)
					So(p.Position, ShouldNotBeEmpty)
					counts[p.Position]++
				}
				So(counts[model.GK], ShouldBeGreaterThan, 0)
				So(counts[model.FWD], ShouldBeGreaterThan, 0)
			})
		})

		Convey("When decoding the generated fixtures", func() {
			ds, err := GenerateDataset(config)
			So(err, ShouldBeNil)
			fixtures, err := model.FixturesFromTable(ds.Fixtures)
			So(err, ShouldBeNil)

			Convey("Then each team plays at most once per gameweek and one gameweek is finished", func() {
				perEvent := map[int]map[int]int{}
				finished := 0
				for _, f := range fixtures {
					So(f.HomeTeamID, ShouldNotEqual, f.AwayTeamID)
					if f.Finished {
						finished++
					}
					if perEvent[*f.Event] == nil {
						perEvent[*f.Event] = map[int]int{}
					}
					perEvent[*f.Event][f.HomeTeamID]++
					perEvent[*f.Event][f.AwayTeamID]++
				}
				So(perEvent, ShouldHaveLength, 3)
				for _, teams := range perEvent {
					for _, n := range teams {
						So(n, ShouldEqual, 1)
					}
				}
				So(finished, ShouldEqual, 2)
			})
		})

		Convey("When the config is too small", func() {
			_, err := GenerateDataset(&Config{Players: 10, Teams: 1})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWriteDataset(t *testing.T) {
	Convey("Given a generated dataset written to disk", t, func() {
		dir := t.TempDir()
		ds, err := GenerateDataset(&Config{Players: 40, Teams: 4, Events: 1, Seed: 3})
		So(err, ShouldBeNil)
		So(WriteDataset(context.Background(), dir, ds), ShouldBeNil)

		Convey("Then the file source loads it back", func() {
			snap, err := repository.NewFileSource(dir).Load(context.Background())
			So(err, ShouldBeNil)
			So(snap.Players.Len(), ShouldEqual, 40)
			So(snap.Fixtures.Len(), ShouldEqual, ds.Fixtures.Len())
			So(snap.Predictions.Len(), ShouldEqual, ds.Predictions.Len())
		})
	})
}
