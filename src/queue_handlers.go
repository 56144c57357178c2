package main

import (
	"errors"
	"log"
	"net/http"
	"qms/src/queue"
	"qms/src/types"

	"github.com/gin-gonic/gin"
)

func queueErrorStatus(err error) int {
	switch {
	case errors.Is(err, queue.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, queue.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, queue.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, queue.ErrInvalidState), errors.Is(err, queue.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func publicQueueHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/services/:id/queue", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			snapshot, err := queue.GetServiceSnapshot(params.ID)
			if err != nil {
				ctx.JSON(queueErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": snapshot})
		})
	return g
}

func queueHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/services/:id/queue/join", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.JoinQueueRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userID := ctx.GetUint("id")
			result, err := queue.Join(params.ID, userID, body.GroupSize, body.MemberNames)
			if err != nil {
				ctx.JSON(queueErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": result})
		}).
		PUT("/services/:id/queue/:entryId/serving", func(ctx *gin.Context) {
			var params types.EntryRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			requesterID := ctx.GetUint("id")
			entry, err := queue.MoveToServing(params.ID, params.EntryID, requesterID)
			if err != nil {
				ctx.JSON(queueErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entry})
		}).
		PUT("/services/:id/queue/:entryId/waiting", func(ctx *gin.Context) {
			var params types.EntryRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			requesterID := ctx.GetUint("id")
			entry, err := queue.MoveToWaiting(params.ID, params.EntryID, requesterID)
			if err != nil {
				ctx.JSON(queueErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entry})
		}).
		PUT("/services/:id/queue/:entryId/complete", func(ctx *gin.Context) {
			var params types.EntryRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			requesterID := ctx.GetUint("id")
			entry, promoted, err := queue.MarkComplete(params.ID, params.EntryID, requesterID)
			if err != nil {
				ctx.JSON(queueErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entry, "promoted": promoted})
		}).
		GET("/services/:id/queue/me", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userID := ctx.GetUint("id")
			status, err := queue.GetUserStatus(params.ID, userID)
			if err != nil {
				ctx.JSON(queueErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			if status == nil {
				ctx.JSON(http.StatusOK, gin.H{"data": nil})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": status})
		})
	return g
}
