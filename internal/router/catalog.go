package router

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cafecraft/internal/model"
	"cafecraft/internal/rbac"
	"cafecraft/pkg/rediscache"
)

// listProducts 返回在售菜单。优先走 Redis 缓存，未命中或 Redis 不可用时回源数据库。
func (h *Handlers) listProducts(c *gin.Context) {
	all := c.Query("all") == "1"
	ctx := c.Request.Context()

	if h.rdb != nil && !all {
		if products, ok, err := rediscache.GetMenu(ctx, h.rdb); err != nil {
			log.Printf("菜单缓存读取失败，回源数据库: %v", err)
		} else if ok {
			c.JSON(http.StatusOK, gin.H{"code": 0, "data": products, "cached": true})
			return
		}
	}

	products, err := h.st.ListProducts(!all)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	if h.rdb != nil && !all {
		if err := rediscache.PutMenu(ctx, h.rdb, products, h.cfg.MenuCacheTTL); err != nil {
			log.Printf("菜单缓存写入失败: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": products})
}

type createProductReq struct {
	UserID   uint    `json:"user_id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	Price    float64 `json:"price" binding:"required,gt=0"`
}

func (h *Handlers) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanInventory) == nil {
		return
	}
	p := &model.Product{Name: req.Name, Category: req.Category, Price: req.Price, IsActive: true}
	if err := h.st.CreateProduct(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	h.invalidateMenu(c)
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": p})
}

type actorReq struct {
	UserID uint `json:"user_id" binding:"required"`
}

func (h *Handlers) deactivateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req actorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanInventory) == nil {
		return
	}
	n, err := h.st.DeactivateProduct(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "商品不存在"})
		return
	}
	h.invalidateMenu(c)
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "已下架"})
}

type recipeItemReq struct {
	IngredientID  uint    `json:"ingredient_id" binding:"required"`
	Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	Unit          string  `json:"unit" binding:"required"`
	WastageFactor float64 `json:"wastage_factor" binding:"gte=0"`
}

type setRecipeReq struct {
	UserID    uint            `json:"user_id" binding:"required"`
	YieldQty  float64         `json:"yield_qty"`
	YieldUnit string          `json:"yield_unit"`
	Items     []recipeItemReq `json:"items" binding:"required,min=1,dive"`
}

func (h *Handlers) setRecipe(c *gin.Context) {
	productID, ok := paramID(c)
	if !ok {
		return
	}
	var req setRecipeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanInventory) == nil {
		return
	}
	items := make([]model.RecipeItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.RecipeItem{
			IngredientID:  it.IngredientID,
			Quantity:      it.Quantity,
			Unit:          it.Unit,
			WastageFactor: it.WastageFactor,
		})
	}
	recipe, err := h.st.SetRecipe(productID, req.YieldQty, req.YieldUnit, items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": recipe})
}

func (h *Handlers) listIngredients(c *gin.Context) {
	ings, err := h.st.ListIngredients()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": ings})
}

type createIngredientReq struct {
	UserID       uint    `json:"user_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Unit         string  `json:"unit" binding:"required"`
	CostPerUnit  float64 `json:"cost_per_unit" binding:"gte=0"`
	ReorderLevel float64 `json:"reorder_level"`
}

func (h *Handlers) createIngredient(c *gin.Context) {
	var req createIngredientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanInventory) == nil {
		return
	}
	ing := &model.Ingredient{Name: req.Name, Unit: req.Unit, CostPerUnit: req.CostPerUnit, ReorderLevel: req.ReorderLevel, IsActive: true}
	if ing.ReorderLevel == 0 {
		ing.ReorderLevel = float64(h.cfg.DefaultReorderLevel)
	}
	if err := h.st.CreateIngredient(ing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": ing})
}

func (h *Handlers) invalidateMenu(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if err := rediscache.InvalidateMenu(c.Request.Context(), h.rdb); err != nil {
		log.Printf("菜单缓存失效失败: %v", err)
	}
}
