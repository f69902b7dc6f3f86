package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the CRUD surface of a numbered document.
type DocumentRouteHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	GetByNumber(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// WorkflowRouteHandler is implemented by documents with a status workflow.
type WorkflowRouteHandler interface {
	ChangeStatus(c *gin.Context)
}

// OverdueRouteHandler is implemented by documents with a due date.
type OverdueRouteHandler interface {
	ListOverdue(c *gin.Context)
	CountOverdue(c *gin.Context)
}

// RegisterDocumentRoutes registers standard CRUD routes for a document.
// Optional workflow and overdue routes are registered when the handler supports them.
//
// Usage:
//
//	repo := document_repo.NewInvoiceRepo(txManager)
//	service := invoice.NewService(repo, clients, projects, allocator, txManager)
//	handler := handlers.NewInvoiceHandler(baseHandler, service)
//	RegisterDocumentRoutes(api.Group("/invoices"), handler)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	group.POST("", handler.Create)
	group.GET("/by-number/:number", handler.GetByNumber)

	if overdue, ok := handler.(OverdueRouteHandler); ok {
		group.GET("/overdue", overdue.ListOverdue)
		group.GET("/overdue/count", overdue.CountOverdue)
	}

	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)

	if workflow, ok := handler.(WorkflowRouteHandler); ok {
		group.PATCH("/:id/status", workflow.ChangeStatus)
	}
}
