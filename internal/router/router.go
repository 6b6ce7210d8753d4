package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/gridspace-io/gridspace/docs"
	"github.com/gridspace-io/gridspace/internal/config"
	"github.com/gridspace-io/gridspace/internal/infra/session"
	"github.com/gridspace-io/gridspace/internal/middleware"
	"github.com/gridspace-io/gridspace/internal/modules/handler"
	"github.com/gridspace-io/gridspace/internal/modules/serializer"
	"github.com/gridspace-io/gridspace/internal/telemetry"
)

type RouterDeps struct {
	Config           *config.Config
	Log              *zap.Logger
	Sessions         session.Store
	WorkspaceHandler *handler.WorkspaceHandler
	TableHandler     *handler.TableHandler
	RowHandler       *handler.RowHandler
	ImportHandler    *handler.ImportHandler
	BillingHandler   *handler.BillingHandler
	SessionHandler   *handler.SessionHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if telemetry.Enabled(d.Config) {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// signed by the payment provider, so it sits outside session auth
	v1.POST("/billing/webhook", d.BillingHandler.Webhook)

	authed := v1.Group("")
	authed.Use(middleware.SessionAuth(d.Config.Session.CookieName, d.Sessions))
	{
		authed.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })
		authed.POST("/auth/logout", d.SessionHandler.Logout)

		workspaces := authed.Group("/workspaces")
		{
			workspaces.POST("", d.WorkspaceHandler.CreateWorkspace)
			workspaces.GET("", d.WorkspaceHandler.ListWorkspaces)
			workspaces.GET("/:workspace_id", d.WorkspaceHandler.GetWorkspace)
			workspaces.DELETE("/:workspace_id", d.WorkspaceHandler.DeleteWorkspace)

			workspaces.POST("/:workspace_id/tables", d.TableHandler.CreateTable)
			workspaces.GET("/:workspace_id/tables", d.TableHandler.ListTables)
		}

		tables := authed.Group("/tables/:table_id")
		{
			tables.GET("", d.TableHandler.GetTable)
			tables.DELETE("", d.TableHandler.DeleteTable)

			tables.POST("/columns", d.TableHandler.AddColumn)
			tables.DELETE("/columns/:column_id", d.TableHandler.DeleteColumn)

			tables.GET("/rows", d.RowHandler.ListRows)
			tables.POST("/rows", d.RowHandler.CreateRow)
			tables.PUT("/rows/:row_id", d.RowHandler.UpdateRow)
			tables.DELETE("/rows/:row_id", d.RowHandler.DeleteRow)

			tables.POST("/import", d.ImportHandler.ImportCSV)
		}

		billing := authed.Group("/billing")
		{
			billing.POST("/checkout", d.BillingHandler.Checkout)
			billing.GET("/subscription", d.BillingHandler.GetSubscription)
		}
	}
	return r
}
