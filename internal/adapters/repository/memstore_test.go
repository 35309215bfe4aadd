package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hitsim/hitsim/internal/adapters/repository"
	"github.com/hitsim/hitsim/internal/domain/judgement"
	"github.com/hitsim/hitsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	Convey("Given a sharded result store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx, repository.WithShardCount(4))

		Convey("When storing a result", func() {
			r := model.Result{
				JobID:        "job-1",
				Distribution: judgement.Distribution{Perfect: 95, Good: 4, Acceptable: 1},
				Accuracy:     0.985,
				MaxCombo:     120,
			}
			So(store.Put(ctx, r), ShouldBeNil)

			Convey("Then it can be fetched by job ID", func() {
				got, err := store.Get(ctx, "job-1")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, r)
			})

			Convey("And storing again replaces the previous result", func() {
				r.MaxCombo = 130
				So(store.Put(ctx, r), ShouldBeNil)

				got, err := store.Get(ctx, "job-1")
				So(err, ShouldBeNil)
				So(got.MaxCombo, ShouldEqual, 130)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When fetching an unknown job", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then it should fail with ErrNotFound", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When storing a result with no job ID", func() {
			err := store.Put(ctx, model.Result{})

			Convey("Then it should fail with ErrEmptyJobID", func() {
				So(err, ShouldEqual, repository.ErrEmptyJobID)
			})
		})

		Convey("When many goroutines write across the keyspace", func() {
			const writers = 8
			const perWriter = 50

			var wg sync.WaitGroup
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < perWriter; i++ {
						_ = store.Put(ctx, model.Result{JobID: fmt.Sprintf("w%d-j%d", w, i)})
					}
				}(w)
			}
			wg.Wait()

			Convey("Then every result should be stored exactly once", func() {
				So(store.Count(ctx), ShouldEqual, writers*perWriter)
			})
		})
	})
}
