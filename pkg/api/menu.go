package api

import (
	"errors"

	"github.com/morezero/framehost/pkg/dispatcher"
	"github.com/morezero/framehost/pkg/menu"
	"github.com/morezero/framehost/pkg/tray"
)

func registerMenu(d *dispatcher.Dispatcher) {
	d.RegisterEvent("menu.register", menuRegister)
	d.RegisterEvent("menu.unregister", menuUnregister)
	d.RegisterEvent("menu.list", menuList)
	d.RegisterEvent("menu.setChecked", menuSetChecked)
	d.RegisterEvent("menu.setEnabled", menuSetEnabled)
}

func registerTray(d *dispatcher.Dispatcher) {
	d.RegisterEvent("tray.create", trayCreate)
	d.RegisterEvent("tray.destroy", trayDestroy)
	d.RegisterEvent("tray.list", trayList)
}

func menuRegister(c *dispatcher.Call) (any, error) {
	var frame menu.Frame
	if err := c.Args().At(0, &frame); err != nil {
		return nil, err
	}
	owner, err := ownerArg(c, 1)
	if err != nil {
		return nil, err
	}
	return c.App.Menus().Register(owner, frame)
}

func menuUnregister(c *dispatcher.Call) (any, error) {
	var id uint16
	if err := c.Args().At(0, &id); err != nil {
		return nil, err
	}
	owner, err := ownerArg(c, 1)
	if err != nil {
		return nil, err
	}
	return nil, c.App.Menus().Unregister(owner, id)
}

func menuList(c *dispatcher.Call) (any, error) {
	owner, err := ownerArg(c, 0)
	if err != nil {
		return nil, err
	}
	return c.App.Menus().List(owner), nil
}

func menuSetChecked(c *dispatcher.Call) (any, error) {
	var id uint16
	var checked bool
	if err := c.Args().At(0, &id); err != nil {
		return nil, err
	}
	if err := c.Args().At(1, &checked); err != nil {
		return nil, err
	}
	owner, err := ownerArg(c, 2)
	if err != nil {
		return nil, err
	}
	return c.App.Menus().SetChecked(owner, id, checked)
}

func menuSetEnabled(c *dispatcher.Call) (any, error) {
	var id uint16
	var enabled bool
	if err := c.Args().At(0, &id); err != nil {
		return nil, err
	}
	if err := c.Args().At(1, &enabled); err != nil {
		return nil, err
	}
	owner, err := ownerArg(c, 2)
	if err != nil {
		return nil, err
	}
	return c.App.Menus().SetEnabled(owner, id, enabled)
}

// trayCreate takes tray options and an optional menu frame; the frame's
// items are registered for the owner and attached to the tray.
func trayCreate(c *dispatcher.Call) (any, error) {
	var opts tray.Options
	if _, err := c.Args().Optional(0, &opts); err != nil {
		return nil, err
	}
	var frame menu.Frame
	if _, err := c.Args().Optional(1, &frame); err != nil {
		return nil, err
	}
	owner, err := ownerArg(c, 2)
	if err != nil {
		return nil, err
	}
	var items []uint16
	if !frame.Empty() {
		if items, err = c.App.Menus().Register(owner, frame); err != nil {
			return nil, err
		}
	}
	id, err := c.App.Trays().Create(owner, opts, items)
	if err != nil {
		return nil, errors.Join(err, c.App.Menus().Discard(owner, items))
	}
	return id, nil
}

func trayDestroy(c *dispatcher.Call) (any, error) {
	var id uint8
	if err := c.Args().Single(&id); err != nil {
		return nil, err
	}
	return nil, c.App.Trays().Destroy(id)
}

func trayList(c *dispatcher.Call) (any, error) {
	return c.App.Trays().List(), nil
}
