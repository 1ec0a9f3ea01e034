package attendance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"MERIT-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// サインイン/アウト（本体）
	r.POST("/events/:event_id/sign-in", h.SignIn)
	r.POST("/events/:event_id/sign-out", h.SignOut)

	// 集計系コラボレータ向けの読み出し
	r.GET("/events/:event_id/attendance", h.ListByEvent)
	r.GET("/members/me/attendance", h.ListMine)
}

// ---------- handlers ----------

func (h *Handler) SignIn(c *gin.Context) {
	memberID := c.GetString(auth.CtxMemberIDKey)
	if _, err := h.svc.SignIn(c.Request.Context(), c.Param("event_id"), memberID); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) SignOut(c *gin.Context) {
	memberID := c.GetString(auth.CtxMemberIDKey)
	if _, err := h.svc.SignOut(c.Request.Context(), c.Param("event_id"), memberID); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListByEvent(c *gin.Context) {
	items, err := h.svc.ListByEvent(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) ListMine(c *gin.Context) {
	memberID := c.GetString(auth.CtxMemberIDKey)
	items, err := h.svc.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
