package handlers

import (
	"github.com/BatmanBruc/bat-bot-shop/internal/action"
	"github.com/BatmanBruc/bat-bot-shop/internal/router"
	"github.com/BatmanBruc/bat-bot-shop/types"
)

func (bh *Handlers) routes() *router.Router {
	r := router.New()
	anyState := router.AnyState

	// Menu and navigation.
	r.Handle(anyState, action.Start, bh.Start)
	r.Handle(anyState, action.Cancel, bh.Cancel)
	r.Handle(anyState, action.FlowCancel, bh.Cancel)
	r.Handle(anyState, action.MenuMain, bh.MainMenu)
	r.Handle(anyState, action.BackToMain, bh.MainMenu)
	r.Handle(anyState, action.MenuSupport, bh.Support)
	r.Handle(anyState, action.CheckChannel, bh.CheckChannel)

	// Storefront and checkout.
	r.Handle(anyState, action.MenuStore, bh.Store)
	r.Handle(anyState, action.StoreOpen, bh.Store)
	r.Handle(anyState, action.StoreProduct, bh.ProductCard)
	r.Handle(anyState, action.SelectPlan, bh.SelectPlan)
	r.Handle(anyState, action.CancelPurchase, bh.CancelPurchase)
	r.Handle(types.StatePurchaseEnterEmail, action.Text, bh.PurchaseEmail)
	r.Handle(types.StatePurchaseUploadCheck, action.PayUpload, bh.PayUpload)
	r.Handle(types.StatePurchaseUploadCheck, action.Photo, bh.UploadCheck)
	r.Handle(types.StatePurchaseUploadCheck, action.Text, bh.CheckNotPhoto)
	r.Handle(types.StatePurchaseUploadCheck, action.Document, bh.CheckNotPhoto)
	r.Handle(types.StatePurchaseUploadCheck, action.Video, bh.CheckNotPhoto)

	// Subscriptions and materials.
	r.Handle(anyState, action.MenuSubscriptions, bh.Subscriptions)
	r.Handle(anyState, action.SubsHistory, bh.OrderHistory)
	r.Handle(anyState, action.MenuMaterials, bh.Materials)
	r.Handle(anyState, action.MaterialProducts, bh.Materials)
	r.Handle(anyState, action.MaterialList, bh.MaterialList)
	r.Handle(anyState, action.MaterialGet, bh.MaterialGet)

	// Referral program and withdrawals.
	r.Handle(anyState, action.MenuReferral, bh.Referral)
	r.Handle(anyState, action.ReferralLink, bh.ReferralLink)
	r.Handle(anyState, action.ReferralBalance, bh.ReferralBalance)
	r.Handle(anyState, action.WithdrawStart, bh.WithdrawStart)
	r.Handle(anyState, action.WithdrawHistory, bh.WithdrawHistory)
	r.Handle(anyState, action.WithdrawCancel, bh.WithdrawCancel)
	r.Handle(types.StateWithdrawEnterAmount, action.Text, bh.WithdrawAmount)
	r.Handle(types.StateWithdrawEnterPhone, action.Text, bh.WithdrawPhone)
	r.Handle(types.StateWithdrawEnterBank, action.Text, bh.WithdrawBank)
	r.Handle(types.StateWithdrawConfirm, action.WithdrawConfirm, bh.WithdrawConfirm)
	r.Handle(types.StateWithdrawConfirm, action.Text, bh.WithdrawConfirmPending)

	// Settings.
	r.Handle(anyState, action.MenuSettings, bh.Settings)
	r.Handle(anyState, action.SettingsEmail, bh.SettingsEmail)
	r.Handle(types.StateSettingsEmail, action.Text, bh.SettingsEmailInput)

	// Admin panel.
	r.HandleAdmin(anyState, action.AdminMenu, bh.AdminMenu)
	r.HandleAdmin(anyState, action.AdminExit, bh.AdminExit)
	r.HandleAdmin(anyState, action.AdminBack, bh.AdminBack)

	r.HandleAdmin(anyState, action.ApprovePayment, bh.ApprovePayment)
	r.HandleAdmin(anyState, action.RejectPayment, bh.RejectPayment)
	r.HandleAdmin(anyState, action.ApproveWithdrawal, bh.ApproveWithdrawal)
	r.HandleAdmin(anyState, action.RejectWithdrawal, bh.RejectWithdrawal)
	r.HandleAdmin(anyState, action.AdminPayments, bh.AdminPayments)
	r.HandleAdmin(anyState, action.PaymentsFilter, bh.PaymentsReport)
	r.HandleAdmin(anyState, action.PaymentView, bh.PaymentView)
	r.HandleAdmin(anyState, action.PaymentsPending, bh.PendingPayments)
	r.HandleAdmin(anyState, action.WithdrawalsPending, bh.PendingWithdrawals)

	r.HandleAdmin(anyState, action.AdminProducts, bh.AdminProducts)
	r.HandleAdmin(anyState, action.ProductsList, bh.AdminProducts)
	r.HandleAdmin(anyState, action.ProductView, bh.AdminProduct)
	r.HandleAdmin(anyState, action.ProductAdd, bh.ProductAdd)
	r.HandleAdmin(types.StateAdminProductName, action.Text, bh.ProductNameInput)
	r.HandleAdmin(types.StateAdminProductDesc, action.Text, bh.ProductDescInput)
	r.HandleAdmin(types.StateAdminProductPhoto, action.Photo, bh.ProductPhotoInput)
	r.HandleAdmin(types.StateAdminProductPhoto, action.Text, bh.ProductPhotoExpected)
	r.HandleAdmin(types.StateAdminProductPhoto, action.Document, bh.ProductPhotoExpected)
	r.HandleAdmin(anyState, action.ProductEditDesc, bh.ProductEditDesc)
	r.HandleAdmin(types.StateAdminEditDesc, action.Text, bh.ProductEditDescInput)
	r.HandleAdmin(anyState, action.ProductEditPhoto, bh.ProductEditPhoto)
	r.HandleAdmin(types.StateAdminEditPhoto, action.Photo, bh.ProductEditPhotoInput)
	r.HandleAdmin(types.StateAdminEditPhoto, action.Text, bh.ProductPhotoExpected)
	r.HandleAdmin(types.StateAdminEditPhoto, action.Document, bh.ProductPhotoExpected)
	r.HandleAdmin(anyState, action.ProductToggle, bh.ProductToggle)
	r.HandleAdmin(anyState, action.ProductDelete, bh.ProductDelete)
	r.HandleAdmin(types.StateAdminConfirmDeletion, action.ProductDeleteConfirm, bh.ProductDeleteConfirm)
	r.HandleAdmin(types.StateAdminConfirmDeletion, action.ProductDeleteCancel, bh.ProductDeleteCancel)
	r.HandleAdmin(types.StateAdminConfirmDeletion, action.Text, bh.ProductDeletePending)

	r.HandleAdmin(anyState, action.PlanList, bh.PlanList)
	r.HandleAdmin(anyState, action.PlanAdd, bh.PlanAdd)
	r.HandleAdmin(types.StateAdminPlanInput, action.Text, bh.PlanInput)
	r.HandleAdmin(anyState, action.PlanDelete, bh.PlanDelete)

	r.HandleAdmin(anyState, action.PromoList, bh.PromoList)
	r.HandleAdmin(anyState, action.PromoAdd, bh.PromoAdd)
	r.HandleAdmin(types.StateAdminPromoInput, action.Text, bh.PromoInput)
	r.HandleAdmin(anyState, action.PromoDelete, bh.PromoDelete)

	r.HandleAdmin(anyState, action.MaterialAdminList, bh.MaterialAdminList)
	r.HandleAdmin(anyState, action.MaterialAdd, bh.MaterialAdd)
	r.HandleAdmin(types.StateAdminMaterialTitle, action.Text, bh.MaterialTitleInput)
	r.HandleAdmin(types.StateAdminMaterialContent, action.Text, bh.MaterialContentInput)
	r.HandleAdmin(types.StateAdminMaterialContent, action.Photo, bh.MaterialContentInput)
	r.HandleAdmin(types.StateAdminMaterialContent, action.Document, bh.MaterialContentInput)
	r.HandleAdmin(types.StateAdminMaterialContent, action.Video, bh.MaterialContentInput)
	r.HandleAdmin(anyState, action.MaterialDelete, bh.MaterialDelete)

	r.HandleAdmin(anyState, action.AdminRequisites, bh.AdminRequisites)
	r.HandleAdmin(anyState, action.RequisitesEdit, bh.RequisitesEdit)
	r.HandleAdmin(types.StateAdminRequisites, action.Text, bh.RequisitesInput)

	r.HandleAdmin(anyState, action.AdminBroadcast, bh.AdminBroadcast)
	r.HandleAdmin(types.StateAdminBroadcastText, action.Text, bh.BroadcastTextInput)
	r.HandleAdmin(types.StateAdminBroadcastConfirm, action.BroadcastConfirm, bh.BroadcastConfirm)
	r.HandleAdmin(types.StateAdminBroadcastConfirm, action.BroadcastCancel, bh.BroadcastCancel)
	r.HandleAdmin(types.StateAdminBroadcastConfirm, action.Text, bh.BroadcastConfirmPending)
	r.HandleAdmin(anyState, action.BroadcastHistory, bh.BroadcastHistory)

	r.NotFound(bh.notFound)
	r.Denied(bh.denied)
	return r
}
