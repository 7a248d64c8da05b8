package api

import (
	"github.com/morezero/framehost/pkg/dispatcher"
	"github.com/morezero/framehost/pkg/shortcut"
)

func registerShortcut(d *dispatcher.Dispatcher) {
	d.RegisterEvent("shortcut.register", shortcutRegister)
	d.RegisterEvent("shortcut.unregister", shortcutUnregister)
	d.RegisterEvent("shortcut.unregisterAll", shortcutUnregisterAll)
	d.RegisterEvent("shortcut.list", shortcutList)
}

func shortcutRegister(c *dispatcher.Call) (any, error) {
	var opt shortcut.Option
	if err := c.Args().At(0, &opt); err != nil {
		return nil, err
	}
	owner, err := ownerArg(c, 1)
	if err != nil {
		return nil, err
	}
	return c.App.Shortcuts().Register(owner, opt)
}

func shortcutUnregister(c *dispatcher.Call) (any, error) {
	var id uint8
	if err := c.Args().At(0, &id); err != nil {
		return nil, err
	}
	owner, err := ownerArg(c, 1)
	if err != nil {
		return nil, err
	}
	return nil, c.App.Shortcuts().Unregister(owner, id)
}

func shortcutUnregisterAll(c *dispatcher.Call) (any, error) {
	owner, err := ownerArg(c, 0)
	if err != nil {
		return nil, err
	}
	return nil, c.App.Shortcuts().UnregisterAll(owner)
}

// shortcutList returns [id, accelerator] pairs.
func shortcutList(c *dispatcher.Call) (any, error) {
	owner, err := ownerArg(c, 0)
	if err != nil {
		return nil, err
	}
	entries := c.App.Shortcuts().List(owner)
	out := make([][2]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, [2]any{e.ID, e.AcceleratorStr})
	}
	return out, nil
}
