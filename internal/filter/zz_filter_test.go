package filter

import (
	"testing"

	"shipflow/internal/pkg"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompile(t *testing.T) {
	Convey("Testing Compile", t, func() {
		Convey("Given no conditions", func() {
			f, err := Compile(nil)

			Convey("Then a nil filter and no error are returned", func() {
				So(err, ShouldBeNil)
				So(f, ShouldBeNil)
			})
		})

		Convey("Given a valid condition", func() {
			f, err := Compile([]string{`Field.product != ""`})

			Convey("Then it compiles", func() {
				So(err, ShouldBeNil)
				So(f, ShouldNotBeNil)
			})
		})

		Convey("Given an invalid expression", func() {
			_, err := Compile([]string{"this is not a valid expression !!!"})

			Convey("Then compilation fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("Given an expression that is not boolean", func() {
			_, err := Compile([]string{`Field.product`})

			Convey("Then compilation fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Testing Match", t, func() {
		Convey("Given a nil filter", func() {
			var f *Filter

			Convey("Then every record passes", func() {
				ok, err := f.Match(pkg.Record{"product": ""})
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("Given a filter on a field value", func() {
			f, err := Compile([]string{`Field.product != ""`})
			So(err, ShouldBeNil)

			Convey("Then a record with the field set passes", func() {
				ok, err := f.Match(pkg.Record{"product": "Widget"})
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})

			Convey("Then a record with the field empty does not pass", func() {
				ok, err := f.Match(pkg.Record{"product": ""})
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Given several conditions", func() {
			f, err := Compile([]string{`Field.product != ""`, `Field.origin_warehouse == "W1"`})
			So(err, ShouldBeNil)

			Convey("Then all must hold", func() {
				ok, err := f.Match(pkg.Record{"product": "Widget", "origin_warehouse": "W1"})
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)

				ok, err = f.Match(pkg.Record{"product": "Widget", "origin_warehouse": "W2"})
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})
	})
}
