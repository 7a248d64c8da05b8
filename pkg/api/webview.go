package api

import (
	"fmt"
	"runtime"

	"github.com/morezero/framehost/pkg/dispatcher"
)

// BaseScheme is the custom protocol that serves application resources.
const BaseScheme = "framehost"

func registerWebview(d *dispatcher.Dispatcher) {
	d.RegisterSync("webview.baseUrl", webviewBaseURL)
	d.RegisterSync("webview.baseFileSystemUrl", webviewBaseFileSystemURL)
	d.RegisterEvent("webview.evaluateScript", webviewEvaluateScript)
	d.RegisterEvent("webview.reload", webviewReload)
	d.RegisterEvent("webview.loadUrl", webviewLoadURL)
	d.RegisterEvent("webview.url", webviewURL)
	d.RegisterEvent("webview.loadHtml", webviewLoadHTML)
	d.RegisterEvent("webview.zoom", webviewZoom)
	d.RegisterEvent("webview.openDevtools", webviewOpenDevtools)
	d.RegisterEvent("webview.closeDevtools", webviewCloseDevtools)
	d.RegisterEvent("webview.isDevtoolsOpen", webviewIsDevtoolsOpen)
}

// BaseURL renders the resource origin for host. Windows webviews only
// accept custom schemes behind an http origin.
func BaseURL(scheme, host, goos string) string {
	if goos == "windows" {
		return fmt.Sprintf("http://%s.%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s", scheme, host)
}

func webviewBaseURL(c *dispatcher.Call) (any, error) {
	return BaseURL(BaseScheme, c.App.Launch().IDName, runtime.GOOS), nil
}

func webviewBaseFileSystemURL(c *dispatcher.Call) (any, error) {
	return BaseURL(BaseScheme, "filesystem", runtime.GOOS), nil
}

func webviewEvaluateScript(c *dispatcher.Call) (any, error) {
	var code string
	if err := c.Args().Single(&code); err != nil {
		return nil, err
	}
	return nil, c.Window.Native().EvaluateScript(code)
}

func webviewReload(c *dispatcher.Call) (any, error) {
	return nil, c.Window.Native().Reload()
}

func webviewLoadURL(c *dispatcher.Call) (any, error) {
	var url string
	if err := c.Args().Single(&url); err != nil {
		return nil, err
	}
	return nil, c.Window.Native().LoadURL(url)
}

func webviewURL(c *dispatcher.Call) (any, error) {
	return c.Window.Native().URL(), nil
}

func webviewOpenDevtools(c *dispatcher.Call) (any, error) {
	open := c.Window.Extensions().OpenDevtools
	if open == nil {
		return nil, unsupported("webview.openDevtools")
	}
	return nil, open()
}

func webviewCloseDevtools(c *dispatcher.Call) (any, error) {
	closeFn := c.Window.Extensions().CloseDevtools
	if closeFn == nil {
		return nil, unsupported("webview.closeDevtools")
	}
	return nil, closeFn()
}

func webviewIsDevtoolsOpen(c *dispatcher.Call) (any, error) {
	isOpen := c.Window.Extensions().IsDevtoolsOpen
	if isOpen == nil {
		return nil, unsupported("webview.isDevtoolsOpen")
	}
	return isOpen(), nil
}

func webviewLoadHTML(c *dispatcher.Call) (any, error) {
	var html string
	if err := c.Args().Single(&html); err != nil {
		return nil, err
	}
	load := c.Window.Extensions().LoadHTML
	if load == nil {
		return nil, unsupported("webview.loadHtml")
	}
	return nil, load(html)
}

func webviewZoom(c *dispatcher.Call) (any, error) {
	var scale float64
	if err := c.Args().Single(&scale); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%s - webview.zoom: scale must be positive, got %v", logPrefix, scale)
	}
	zoom := c.Window.Extensions().Zoom
	if zoom == nil {
		return nil, unsupported("webview.zoom")
	}
	return nil, zoom(scale)
}
