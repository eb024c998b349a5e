//go:build integration
// +build integration

package endpoint

import (
	"context"
	"net/http"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/datastax/query-plan-apis/auth"
	"github.com/datastax/query-plan-apis/db"
	. "github.com/datastax/query-plan-apis/internal/testutil"
	"github.com/datastax/query-plan-apis/internal/testutil/rest"
	"github.com/datastax/query-plan-apis/internal/testutil/schemas/blog"
	e "github.com/datastax/query-plan-apis/rest/endpoint/v1"
	"github.com/datastax/query-plan-apis/rest/models"
	"github.com/datastax/query-plan-apis/types"
)

var _ = Describe("DataEndpoint", func() {
	Describe("RoutesRest()", func() {
		var routes []types.Route
		var endpoint *DataEndpoint

		BeforeEach(func() {
			handle := SetupIntegrationTestFixture(append(blog.Schema, blog.Data...)...)
			cfg := NewEndpointConfigWithLogger(TestLogger(), db.DriverSqlite, "").WithUseUserOrRoleAuth(true)

			var err error
			endpoint, err = cfg.NewEndpointWithResources(db.NewDb(db.NewSqlSession(handle), TestLogger()), blog.Resources()...)
			Expect(err).ToNot(HaveOccurred())
			routes = endpoint.RoutesRest(rest.Prefix)
		})

		AfterEach(func() {
			TearDownIntegrationTestFixture()
		})

		Describe("GET /v1/resources", func() {
			It("Should list the resources", func() {
				var response models.Resources
				code := rest.ExecuteGet(routes, e.ResourcesPathFormat, "", &response)
				Expect(code).To(Equal(http.StatusOK))
				Expect(response.Resources).To(Equal([]string{"posts", "users"}))
			})
		})

		Describe("GET /v1/resources/{resource}/rows", func() {
			It("Should return 404 when the resource is not found", func() {
				var response models.ModelError
				code := rest.ExecuteGet(routes, e.RowsPathFormat, "", &response, "passwords")
				Expect(code).To(Equal(http.StatusNotFound))
				Expect(response.Description).To(Equal("resource 'passwords' not found"))
			})

			It("Should select the default fields", func() {
				var response models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "", &response, "users")
				Expect(response.Meta.Count).To(Equal(3))
				Expect(response.Data).To(Equal([]map[string]interface{}{
					{"id": float64(1), "name": "Ann"},
					{"id": float64(2), "name": "Bob"},
					{"id": float64(3), "name": "Cid"},
				}))
			})

			It("Should ignore filters that are not allowed", func() {
				var response models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "filters[password]=secret&filters[name]=bo", &response, "users")
				Expect(response.Data).To(HaveLen(1))
				Expect(response.Data[0]["name"]).To(Equal("Bob"))
			})

			It("Should filter on relations and groups in request order", func() {
				var response models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat,
					"filters[any][city]=Nice&filters[any][no_email]=1&sort=-id", &response, "users")
				Expect(response.Data).To(HaveLen(2))
				Expect(response.Data[0]["name"]).To(Equal("Cid"))
				Expect(response.Data[1]["name"]).To(Equal("Bob"))
			})

			It("Should select list filters", func() {
				var response models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "filters[ids][]=2&filters[ids][]=3&fields=name", &response, "users")
				Expect(response.Data).To(Equal([]map[string]interface{}{{"name": "Bob"}, {"name": "Cid"}}))
			})

			It("Should embed relations", func() {
				var response models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "fields=name&embed=posts[title]&filters[id]=1", &response, "users")
				Expect(response.Data).To(HaveLen(1))
				Expect(response.Data[0]).To(HaveKeyWithValue("name", "Ann"))
				Expect(response.Data[0]).ToNot(HaveKey("id"))
				Expect(response.Data[0]["posts"]).To(ConsistOf(
					map[string]interface{}{"title": "Hello", "author_id": float64(1)},
					map[string]interface{}{"title": "Second thoughts", "author_id": float64(1)},
				))
			})

			It("Should page through the rows", func() {
				var offsetPage models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "per_page=2&page=2", &offsetPage, "users")
				Expect(offsetPage.Meta).To(Equal(models.RowsMeta{Count: 1, Page: 2, PerPage: 2}))

				var first models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "per_page=2&cursor="+types.EncodeCursor(0), &first, "users")
				Expect(first.Meta.Count).To(Equal(2))
				Expect(first.Meta.NextCursor).To(Equal(types.EncodeCursor(2)))

				var last models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "per_page=2&cursor="+first.Meta.NextCursor, &last, "users")
				Expect(last.Meta.Count).To(Equal(1))
				Expect(last.Meta.NextCursor).To(BeEmpty())
			})

			It("Should include trashed rows when requested", func() {
				var response models.Rows
				rest.ExecuteGet(routes, e.RowsPathFormat, "trashed=with", &response, "users")
				Expect(response.Meta.Count).To(Equal(4))
			})

			It("Should require an identity for scoped resources", func() {
				var errResponse models.ModelError
				code := rest.ExecuteGet(routes, e.RowsPathFormat, "", &errResponse, "posts")
				Expect(code).To(Equal(http.StatusUnauthorized))

				var response models.Rows
				ctx := auth.WithContextUserOrRole(context.Background(), "2")
				code = rest.ExecuteGetWithContext(ctx, routes, e.RowsPathFormat, "filters[author]=1", &response, "posts")
				Expect(code).To(Equal(http.StatusOK))
				Expect(response.Data).To(HaveLen(1))
				Expect(response.Data[0]["title"]).To(Equal("Bob says hi"))
			})
		})

		Describe("GET /v1/resources/{resource}/plan", func() {
			It("Should explain the query", func() {
				var response models.Plan
				rest.ExecuteGet(routes, e.PlanPathFormat, "filters[city]=Lyon", &response, "users")
				Expect(response.Query).To(ContainSubstring("EXISTS (SELECT 1 FROM profiles"))
				Expect(response.Args).To(Equal([]interface{}{"Lyon"}))
			})
		})

		Describe("Reload()", func() {
			It("Should serve the reloaded resources", func() {
				Expect(endpoint.ReloadResources(blog.Posts())).To(Succeed())

				var response models.ModelError
				code := rest.ExecuteGet(routes, e.RowsPathFormat, "", &response, "users")
				Expect(code).To(Equal(http.StatusNotFound))
			})
		})
	})
})

func TestEndpointIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Endpoint integration test suite")
}
