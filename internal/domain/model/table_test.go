package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/fplcoach/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable_Require(t *testing.T) {
	Convey("Given a players table", t, func() {
		tbl := model.NewTable("players", "name", "team_id")

		Convey("When all required columns are present", func() {
			So(tbl.Require("name", "team_id"), ShouldBeNil)
		})

		Convey("When a column is missing", func() {
			err := tbl.Require("name", "minutes")

			Convey("Then a structured schema error is returned", func() {
				var se *model.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Table, ShouldEqual, "players")
				So(se.Column, ShouldEqual, "minutes")
				So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
			})
		})

		Convey("When the table is nil", func() {
			var nilTable *model.Table
			So(nilTable.Len(), ShouldEqual, 0)
			So(errors.Is(nilTable.Require("name"), model.ErrSchema), ShouldBeTrue)
		})
	})
}

func TestTable_Append(t *testing.T) {
	Convey("Given an empty table", t, func() {
		tbl := model.NewTable("fixtures", "team_h")

		Convey("When rows with new columns are appended", func() {
			tbl.Append(model.Row{"team_h": 1.0, "team_a": 2.0, "event": 3.0})
			tbl.Append(model.Row{"team_h": 4.0})

			Convey("Then new columns are registered once in sorted order", func() {
				So(tbl.Columns, ShouldResemble, []string{"team_h", "event", "team_a"})
				So(tbl.Len(), ShouldEqual, 2)
			})
		})
	})
}

func TestRow_Accessors(t *testing.T) {
	Convey("Given a row with mixed value kinds", t, func() {
		r := model.Row{
			"a": 3.0,
			"b": "4.5",
			"c": nil,
			"d": math.NaN(),
			"e": "text",
			"f": 7,
			"g": "true",
			"h": math.Inf(1),
		}

		Convey("Then numeric accessors normalise missing and non-finite values to zero", func() {
			So(r.Float("a"), ShouldEqual, 3.0)
			So(r.Float("b"), ShouldEqual, 4.5)
			So(r.Float("c"), ShouldEqual, 0)
			So(r.Float("d"), ShouldEqual, 0)
			So(r.Float("e"), ShouldEqual, 0)
			So(r.Float("h"), ShouldEqual, 0)
			So(r.Float("missing"), ShouldEqual, 0)
			So(r.OptFloat("c"), ShouldBeNil)
			So(r.OptFloat("d"), ShouldBeNil)
		})

		Convey("Then Int only accepts whole numbers", func() {
			n, ok := r.Int("f")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 7)
			_, ok = r.Int("b")
			So(ok, ShouldBeFalse)
		})

		Convey("Then Bool understands strings and numbers", func() {
			So(r.Bool("g"), ShouldBeTrue)
			So(r.Bool("a"), ShouldBeTrue)
			So(r.Bool("c"), ShouldBeFalse)
		})
	})
}

func TestCanonicalKey(t *testing.T) {
	Convey("Given equivalent key values", t, func() {
		k1, ok1 := model.CanonicalKey(1)
		k2, ok2 := model.CanonicalKey(1.0)
		k3, ok3 := model.CanonicalKey(" 1 ")

		Convey("Then they render the same key", func() {
			So(ok1 && ok2 && ok3, ShouldBeTrue)
			So(k1, ShouldEqual, "1")
			So(k2, ShouldEqual, "1")
			So(k3, ShouldEqual, "1")
		})

		Convey("And nil, blank and NaN are not keys", func() {
			_, ok := model.CanonicalKey(nil)
			So(ok, ShouldBeFalse)
			_, ok = model.CanonicalKey("  ")
			So(ok, ShouldBeFalse)
			_, ok = model.CanonicalKey(math.NaN())
			So(ok, ShouldBeFalse)
		})
	})
}

func TestPlayersFromTable(t *testing.T) {
	Convey("Given a players table without a name column", t, func() {
		tbl := model.NewTable("players", "team_id")
		_, err := model.PlayersFromTable(tbl)
		So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
	})

	Convey("Given a sparse players table", t, func() {
		tbl := model.NewTable("players", "name", "team_id", "minutes", "position", "predicted_points")
		tbl.Rows = []model.Row{
			{"name": "Salah", "team_id": 12.0, "minutes": 900.0, "position": "MID", "predicted_points": 10.0},
			{"name": "Raya", "team_id": "1", "position": "1"},
		}

		players, err := model.PlayersFromTable(tbl)

		Convey("Then every row is decoded and missing values default to zero", func() {
			So(err, ShouldBeNil)
			So(players, ShouldHaveLength, 2)
			So(players[0].Position, ShouldEqual, model.MID)
			So(players[0].Predicted(), ShouldEqual, 10.0)
			So(players[1].TeamID, ShouldEqual, 1)
			So(players[1].Position, ShouldEqual, model.GK)
			So(players[1].PredictedPoints, ShouldBeNil)
			So(players[1].Predicted(), ShouldEqual, 0)
			So(players[1].Minutes, ShouldEqual, 0)
		})
	})
}

func TestOpponentTable(t *testing.T) {
	Convey("Given fixtures out of event order with a finished match", t, func() {
		fx := model.NewTable("fixtures", "team_h", "team_a", "event", "finished")
		fx.Rows = []model.Row{
			{"team_h": 1.0, "team_a": 2.0, "event": 3.0},
			{"team_h": 3.0, "team_a": 1.0, "event": 2.0},
			{"team_h": 1.0, "team_a": 4.0, "event": 1.0, "finished": true},
			{"team_h": 5.0, "team_a": 6.0},
		}

		opp, err := model.OpponentTable(fx)

		Convey("Then rows follow event order with both sides per fixture", func() {
			So(err, ShouldBeNil)
			So(opp.Len(), ShouldEqual, 6)
			So(opp.Rows[0].Float(model.ColTeamID), ShouldEqual, 3)
			So(opp.Rows[1].Float(model.ColTeamID), ShouldEqual, 1)
			So(opp.Rows[1].Float(model.ColOpponentID), ShouldEqual, 3)
			So(opp.Rows[4].Float(model.ColTeamID), ShouldEqual, 5)
		})
	})

	Convey("Given a fixtures table missing team_a", t, func() {
		fx := model.NewTable("fixtures", "team_h")
		_, err := model.OpponentTable(fx)
		So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
	})
}

func TestFormation(t *testing.T) {
	Convey("Given formation strings", t, func() {
		Convey("When parsing an outfield shape", func() {
			f, err := model.ParseFormation("4-4-2")
			So(err, ShouldBeNil)
			So(f, ShouldResemble, model.Formation{model.GK: 1, model.DEF: 4, model.MID: 4, model.FWD: 2})
			So(f.Size(), ShouldEqual, 11)
			So(f.String(), ShouldEqual, "4-4-2")
		})

		Convey("When parsing a full shape", func() {
			f, err := model.ParseFormation("1-0-0-0")
			So(err, ShouldBeNil)
			So(f.Size(), ShouldEqual, 1)
		})

		Convey("When parsing garbage", func() {
			_, err := model.ParseFormation("4-x-2")
			So(err, ShouldNotBeNil)
			_, err = model.ParseFormation("4-4")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given formation maps", t, func() {
		So(model.DefaultFormation().Size(), ShouldEqual, 11)
		So(model.Formation{model.DEF: -1}.Validate(), ShouldNotBeNil)
		So(model.Formation{"GOALIE": 1}.Validate(), ShouldNotBeNil)

		f, err := model.FormationFromMap(map[string]int{"gkp": 1, "def": 5})
		So(err, ShouldBeNil)
		So(f[model.GK], ShouldEqual, 1)
		So(f[model.DEF], ShouldEqual, 5)

		_, err = model.FormationFromMap(map[string]int{"keeper": 1})
		So(err, ShouldNotBeNil)
	})
}
