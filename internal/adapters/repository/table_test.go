package repository

import (
	"strings"
	"testing"

	"github.com/okian/fplcoach/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodeCSV(t *testing.T) {
	Convey("Given a CSV with a BOM, blanks and aliases", t, func() {
		in := "\ufeffweb_name,team,minutes,status,finished\nSalah,12,900,a,false\nRaya,1,,d,TRUE\n"
		tbl, err := DecodeCSV(TablePlayers, strings.NewReader(in))

		Convey("Then cells are typed and aliased columns are added", func() {
			So(err, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 2)
			So(tbl.Has(model.ColName), ShouldBeTrue)
			So(tbl.Has(model.ColTeamID), ShouldBeTrue)
			So(tbl.Rows[0][model.ColName], ShouldEqual, "Salah")
			So(tbl.Rows[0]["minutes"], ShouldEqual, 900.0)
			So(tbl.Rows[1]["minutes"], ShouldBeNil)
			So(tbl.Rows[1]["finished"], ShouldEqual, true)
			So(tbl.Rows[1][model.ColTeamID], ShouldEqual, 1.0)
		})
	})

	Convey("Given an empty CSV", t, func() {
		tbl, err := DecodeCSV(TablePlayers, strings.NewReader(""))
		So(err, ShouldBeNil)
		So(tbl.Len(), ShouldEqual, 0)
	})

	Convey("Given short records", t, func() {
		tbl, err := DecodeCSV(TablePlayers, strings.NewReader("name,minutes\nSalah\n"))
		So(err, ShouldBeNil)
		So(tbl.Rows[0]["minutes"], ShouldBeNil)
	})
}

func TestDecodeJSON(t *testing.T) {
	Convey("Given FPL-shaped fixtures", t, func() {
		in := `[{"team_h": 1, "team_a": 2, "event": 3, "finished": false, "stats": [1], "kickoff_time": null},
		        {"team_h": 4, "team_a": 5, "event": null, "finished": true}]`
		tbl, err := DecodeJSON(TableFixtures, strings.NewReader(in))

		Convey("Then numbers decode as float64 and nested values are dropped", func() {
			So(err, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 2)
			So(tbl.Rows[0]["team_h"], ShouldEqual, 1.0)
			So(tbl.Rows[0]["stats"], ShouldBeNil)
			So(tbl.Rows[1]["finished"], ShouldEqual, true)
			So(tbl.Require(model.ColHomeTeam, model.ColAwayTeam), ShouldBeNil)
		})
	})

	Convey("Given numeric strings as in FPL elements", t, func() {
		tbl, err := DecodeJSON(TablePlayers, strings.NewReader(`[{"web_name": "Salah", "ep_next": "7.5"}]`))
		So(err, ShouldBeNil)
		So(tbl.Rows[0][model.ColPredictedPoints], ShouldEqual, 7.5)
	})

	Convey("Given malformed input", t, func() {
		_, err := DecodeJSON(TablePlayers, strings.NewReader(`{"not": "an array"}`))
		So(err, ShouldNotBeNil)
	})
}

func TestEncodeCSV(t *testing.T) {
	Convey("Given a table", t, func() {
		tbl := model.NewTable(TablePlayers, "name", "minutes", "finished")
		tbl.Rows = []model.Row{{"name": "Salah", "minutes": 900.0, "finished": false}, {"name": "Raya"}}

		out, err := EncodeCSV(tbl)

		Convey("Then it decodes back to the same values", func() {
			So(err, ShouldBeNil)
			So(string(out), ShouldEqual, "name,minutes,finished\nSalah,900,false\nRaya,,\n")
			back, err := DecodeCSV(TablePlayers, strings.NewReader(string(out)))
			So(err, ShouldBeNil)
			So(back.Rows[0]["minutes"], ShouldEqual, 900.0)
		})
	})
}
