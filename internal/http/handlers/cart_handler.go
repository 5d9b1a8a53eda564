package handlers

import (
	"sentryhome/internal/domain"
	applog "sentryhome/internal/log"
	"sentryhome/internal/notify"
	"sentryhome/internal/services"
	"sentryhome/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartSyncService
}

type addItemReq struct {
	domain.ProductSnapshot
	Quantity int `json:"quantity"`
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	lines := h.Cart.GetCart(c.UserContext(), sid)
	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Qty)
	}
	return c.JSON(fiber.Map{"items": lines, "total": total, "count": domain.CountItems(lines)})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req addItemReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	sink := &notify.Collector{}
	ok := h.Cart.AddToCart(c.UserContext(), sid, req.ProductSnapshot, req.Quantity, sink)
	applog.Info(c, "cart.add", map[string]any{"productId": req.ProductID, "ok": ok})
	return c.JSON(fiber.Map{"ok": ok, "notices": sink.Notices})
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid product id"})
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	sink := &notify.Collector{}
	// Zero or negative means "remove this line", not a validation error.
	res := h.Cart.UpdateQuantity(c.UserContext(), sid, productID, req.Quantity, sink)
	return c.JSON(fiber.Map{"ok": res, "notices": sink.Notices})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid product id"})
	}
	sink := &notify.Collector{}
	res := h.Cart.RemoveItem(c.UserContext(), sid, productID, sink)
	applog.Info(c, "cart.remove", map[string]any{"productId": productID, "ok": res})
	return c.JSON(fiber.Map{"ok": res, "notices": sink.Notices})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	sink := &notify.Collector{}
	res := h.Cart.ClearCart(c.UserContext(), sid, sink)
	applog.Info(c, "cart.clear", map[string]any{"ok": res})
	return c.JSON(fiber.Map{"ok": res, "notices": sink.Notices})
}

func (h *CartHandler) Count(c *fiber.Ctx) error {
	sid := ensureSID(c)
	return c.JSON(fiber.Map{"count": h.Cart.CartCount(c.UserContext(), sid)})
}
