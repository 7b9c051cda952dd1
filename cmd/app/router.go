package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/writelyhq/writely/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activate", app.activateUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))
	router.HandlerFunc(http.MethodPost, "/v1/users/check-email", app.checkEmailHandler)

	// post service
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requirePermission(app.createPostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.getPostHandler)
	router.HandlerFunc(http.MethodPut, "/v1/posts/:id", app.requirePermission(app.updatePostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:id", app.requirePermission(app.deletePostHandler, userservice.PermissionWritePost))
	router.HandlerFunc(http.MethodPost, "/v1/posts/:slug/image", app.requirePermission(app.uploadPostImageHandler, userservice.PermissionWritePost))

	// taxonomy
	router.HandlerFunc(http.MethodGet, "/v1/categories", app.listCategoriesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/categories", app.createCategoryHandler)
	router.HandlerFunc(http.MethodGet, "/v1/categories/:slug/posts", app.listPostsByCategoryHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags", app.listTagsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tags", app.createTagHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags/:slug/posts", app.listPostsByTagHandler)

	// comment service
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts/:slug/comments", app.submitInlineCommentHandler)
	router.HandlerFunc(http.MethodPost, "/v1/comments", app.submitCommentHandler)
	router.HandlerFunc(http.MethodPost, "/v1/comments/approve", app.requireAuthUser(app.approveCommentsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/comments/pending", app.requireAuthUser(app.listPendingCommentsHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireAuthUser(app.deleteCommentHandler))

	// notification service
	router.HandlerFunc(http.MethodGet, "/v1/notifications", app.requireAuthUser(app.listNotificationsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/notifications/unread", app.unreadNotificationsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/notifications/:id/read", app.requireAuthUser(app.markNotificationReadHandler))

	// dashboard service
	router.HandlerFunc(http.MethodGet, "/v1/dashboard", app.requireAuthUser(app.dashboardHandler))

	return app.recoverPanic(app.logRequest(app.rateLimit(app.authenticate(router))))
}
