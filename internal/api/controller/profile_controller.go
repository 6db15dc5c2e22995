package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/middleware"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/service"
)

type ProfileController struct {
	profile *service.ProfileService
}

func NewProfileController(profile *service.ProfileService) *ProfileController {
	return &ProfileController{profile: profile}
}

// Get 当前用户资料
// @Summary 当前用户资料
// @Description 用户信息、设置、紧急联系人和关联银行
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.Profile}
// @Router /profile [get]
func (ctrl *ProfileController) Get(c *gin.Context) {
	p, err := ctrl.profile.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, "get profile", err)
		return
	}
	response.Success(c, p)
}

// AddContact 新增紧急联系人
// @Summary 新增紧急联系人
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ContactInput true "联系人"
// @Success 200 {object} response.Response{data=model.EmergencyContact}
// @Router /profile/contacts [post]
func (ctrl *ProfileController) AddContact(c *gin.Context) {
	var req service.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	contact, err := ctrl.profile.AddContact(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, "add contact", err)
		return
	}
	response.Success(c, contact)
}

// AddBank 关联银行账户
// @Summary 关联银行账户
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.BankInput true "银行账户"
// @Success 200 {object} response.Response{data=model.LinkedBank}
// @Router /profile/banks [post]
func (ctrl *ProfileController) AddBank(c *gin.Context) {
	var req service.BankInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	bank, err := ctrl.profile.AddBank(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, "add bank", err)
		return
	}
	response.Success(c, bank)
}

// SaveSettings 保存设置
// @Summary 保存设置
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SettingsInput true "设置"
// @Success 200 {object} response.Response{data=model.UserSettings}
// @Router /profile/settings [put]
func (ctrl *ProfileController) SaveSettings(c *gin.Context) {
	var req service.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := ctrl.profile.SaveSettings(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, "save settings", err)
		return
	}
	response.Success(c, st)
}
