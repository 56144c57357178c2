package main

import (
	"log"
	"net/http"
	"qms/src/models"
	"qms/src/types"
	"qms/src/utils"
	"strconv"

	"github.com/gin-gonic/gin"
)

func publicServiceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/services", func(ctx *gin.Context) {
			services, err := utils.ListActiveServices()
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": services, "count": len(services)})
		}).
		GET("/services/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			service, err := utils.GetService(params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": service})
		})
	return g
}

func serviceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/services", func(ctx *gin.Context) {
			var body types.CreateServiceRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerID := ctx.GetUint("id")
			id, err := utils.CreateNewService(&body, organizerID)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id}})
		}).
		GET("/organizer/services", func(ctx *gin.Context) {
			organizerID := ctx.GetUint("id")
			services, err := utils.ListOrganizerServices(organizerID)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": services, "count": len(services)})
		}).
		PATCH("/services/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateServiceStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			service, err := utils.GetService(params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			requesterID := ctx.GetUint("id")
			if service.OrganizerID != requesterID {
				ctx.Status(http.StatusForbidden)
				return
			}
			if err := utils.UpdateServiceStatus(params.ID, body.NewStatus, service.Status); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/services/:id/capacity", func(ctx *gin.Context) {
			idParam := ctx.Params.ByName("id")
			atoi, err := strconv.Atoi(idParam)
			if err != nil {
				log.Print(err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			service, err := utils.GetService(uint(atoi))
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": &models.Service{
				ID:          service.ID,
				MaxCapacity: service.MaxCapacity,
				Status:      service.Status,
			}})
		})
	return g
}
