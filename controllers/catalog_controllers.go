package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wrenchworks/garage-app/services"
	"github.com/wrenchworks/garage-app/utils"
)

// CatalogController serves the static vehicle make/model/year pickers.
type CatalogController struct{}

func NewCatalogController() *CatalogController {
	return &CatalogController{}
}

func (cc *CatalogController) GetMakes(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Vehicle makes", services.CatalogMakes())
}

func (cc *CatalogController) GetModels(c *gin.Context) {
	makeName := c.Query("make")
	if makeName == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("make is required"))
		return
	}

	models := services.CatalogModels(makeName)
	if models == nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("unknown make"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Vehicle models", models)
}

func (cc *CatalogController) GetYears(c *gin.Context) {
	// Make/model are accepted for symmetry with the pickers but the year
	// range is the same for every pair.
	if makeName := c.Query("make"); makeName != "" {
		if model := c.Query("model"); model != "" && !services.CatalogHasModel(makeName, model) {
			utils.RespondError(c, http.StatusNotFound, errors.New("unknown make/model"))
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Vehicle years", services.CatalogYears())
}
