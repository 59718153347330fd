package extui

import (
	"context"
	"fmt"
	"strings"
	"unsafe"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PluginInstance is the running plugin a UI is attached to.
type PluginInstance interface {
	// Handle returns the plugin's LV2_Handle. It is passed to the UI
	// through the instance-access feature.
	Handle() unsafe.Pointer

	// URI returns the plugin URI, if the host knows it.
	URI() (string, bool)
}

// Instantiate creates a UI for the plugin instance.
//
// The returned Instance stays with the host, which drains it; the Runner
// belongs to the UI goroutine. Close the Runner before the Instance, and
// every Instance before the Library.
func (l *Library) Instantiate(ui *ExternalUI, plugin PluginInstance) (*Instance, *Runner, error) {
	if err := l.acquire(); err != nil {
		return nil, nil, err
	}

	inst, runner, err := l.instantiate(ui, plugin)
	if err != nil {
		l.release()
		return nil, nil, err
	}
	return inst, runner, nil
}

func (l *Library) instantiate(ui *ExternalUI, plugin PluginInstance) (*Instance, *Runner, error) {
	id := uuid.New()
	log := l.cfg.Logger.WithPrefix("extui " + id.String()[:8])

	_, span := l.tel.tracer.Start(context.Background(), "extui.instantiate")
	defer span.End()
	span.SetAttributes(
		attribute.String("extui.session", id.String()),
		attribute.String("extui.ui", ui.URI),
	)

	fail := func(err error) (*Instance, *Runner, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	if !descriptorHasInstantiate(l.descriptor) {
		return fail(&InstantiateError{Reason: "no instantiation function available", Err: ErrFunctionUnavailable})
	}

	pluginURI, ok := plugin.URI()
	if !ok {
		return fail(instantiateError("could not get plugin URI"))
	}
	span.SetAttributes(attribute.String("extui.plugin", pluginURI))

	label := l.cfg.PluginLabel
	if label == "" {
		label = pluginURI
	}
	for _, s := range []string{pluginURI, ui.Bundle.Path, label} {
		if strings.IndexByte(s, 0) >= 0 {
			return fail(instantiateError(fmt.Sprintf("C string construction error: %q contains a NUL byte", s)))
		}
	}

	host := newHostRecord(label)
	if host == nil {
		return fail(instantiateError("could not allocate host feature"))
	}

	features := newFeatures(plugin.Handle(), host)
	if features == nil {
		freeHostRecord(host)
		return fail(instantiateError("could not allocate features"))
	}
	defer freeFeatures(features)

	channel := newControlChannel()
	producerID := registerProducer(&producer{channel: channel, log: log, tel: l.tel})
	controller := newController(producerID)
	if controller == nil {
		unregisterProducer(producerID)
		freeHostRecord(host)
		return fail(instantiateError("could not allocate controller"))
	}

	handle := instantiateForeign(l.descriptor, pluginURI, ui.Bundle.Path, controller, features)
	widget := controllerWidget(controller)

	if handle == nil || widget == nil {
		unregisterProducer(producerID)
		reason := "UI instantiate returned no handle"
		if handle != nil {
			cleanupForeign(l.descriptor, handle)
			reason = "UI did not provide a widget"
		}
		freeController(controller)
		freeHostRecord(host)
		return fail(instantiateError(reason))
	}

	runner := &Runner{
		widget:     widget,
		producerID: producerID,
		log:        log,
	}
	inst := &Instance{
		id:         id,
		lib:        l,
		descriptor: l.descriptor,
		handle:     handle,
		host:       host,
		controller: controller,
		channel:    channel,
		runner:     runner,
		pluginURI:  pluginURI,
		tel:        l.tel,
		log:        log,
	}

	l.tel.add(l.tel.instantiations, 1)
	log.Info("instantiated UI %s for plugin %s", ui.URI, pluginURI)
	return inst, runner, nil
}
