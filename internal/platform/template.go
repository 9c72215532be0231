/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package platform

import (
	"context"

	v1 "github.com/amartyaa/workerplatform/api/v1"
	"github.com/amartyaa/workerplatform/internal/perr"
	"github.com/amartyaa/workerplatform/internal/store"
	"github.com/amartyaa/workerplatform/internal/tmpl"
)

// RegisterTemplate validates the slot closure invariant (spec.md §3
// invariant 5) and persists a new Template.
func (p *Platform) RegisterTemplate(ctx context.Context, id, name, description string, files map[string]string, slots []v1.Slot, defaults *v1.ConfigPartial) (v1.Template, error) {
	if existing, err := p.templates.Get(ctx, id); err != nil {
		return v1.Template{}, perr.Storage(err)
	} else if existing != nil {
		return v1.Template{}, perr.Conflict("template %q already exists", id)
	}

	if err := tmpl.Validate(files, slots); err != nil {
		return v1.Template{}, err
	}

	t := v1.Template{ID: id, Name: name, Description: description, Files: files, Slots: slots, Defaults: defaults}
	if err := p.templates.Put(ctx, id, &t); err != nil {
		return v1.Template{}, perr.Storage(err)
	}
	return t, nil
}

// UpdateTemplate overlays the given fields on the existing template,
// re-validating the slot closure invariant against the result.
func (p *Platform) UpdateTemplate(ctx context.Context, id string, files map[string]string, slots []v1.Slot, defaults *v1.ConfigPartial) (v1.Template, error) {
	existing, err := p.templates.Get(ctx, id)
	if err != nil {
		return v1.Template{}, perr.Storage(err)
	}
	if existing == nil {
		return v1.Template{}, perr.NotFound("template", id)
	}

	if files != nil {
		existing.Files = files
	}
	if slots != nil {
		existing.Slots = slots
	}
	if defaults != nil {
		existing.Defaults = defaults
	}

	if err := tmpl.Validate(existing.Files, existing.Slots); err != nil {
		return v1.Template{}, err
	}

	if err := p.templates.Put(ctx, id, existing); err != nil {
		return v1.Template{}, perr.Storage(err)
	}
	return *existing, nil
}

// GetTemplate returns the template, or NotFoundError if absent.
func (p *Platform) GetTemplate(ctx context.Context, id string) (v1.Template, error) {
	t, err := p.templates.Get(ctx, id)
	if err != nil {
		return v1.Template{}, perr.Storage(err)
	}
	if t == nil {
		return v1.Template{}, perr.NotFound("template", id)
	}
	return *t, nil
}

// DeleteTemplate removes a template. Worker-from-template has no
// back-reference (spec.md §3), so this has no cascade.
func (p *Platform) DeleteTemplate(ctx context.Context, id string) error {
	existing, err := p.templates.Get(ctx, id)
	if err != nil {
		return perr.Storage(err)
	}
	if existing == nil {
		return perr.NotFound("template", id)
	}
	if err := p.templates.Delete(ctx, id); err != nil {
		return perr.Storage(err)
	}
	return nil
}

// ListTemplates paginates over every template.
func (p *Platform) ListTemplates(ctx context.Context, opts store.ListOptions) (store.ListResult[*v1.Template], error) {
	res, err := p.templates.List(ctx, opts)
	if err != nil {
		return store.ListResult[*v1.Template]{}, perr.Storage(err)
	}
	return res, nil
}

// PreviewTemplateFiles interpolates a template's files with the given
// slot values, falling back to each slot's default, without persisting
// anything (spec.md §4.9 previewTemplateFiles).
func (p *Platform) PreviewTemplateFiles(ctx context.Context, templateID string, values map[string]string) (map[string]string, error) {
	t, err := p.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return tmpl.Preview(t.Files, t.Slots, values)
}

// CreateWorkerFromTemplate interpolates the template's files, merges the
// template's defaults under any caller-supplied overrides, and delegates
// to CreateWorker (spec.md §4.9).
func (p *Platform) CreateWorkerFromTemplate(ctx context.Context, tenantID, templateID, workerID string, values map[string]string, overrides v1.ConfigPartial, hostnames []string, build v1.BuildOptions) (v1.Worker, error) {
	t, err := p.GetTemplate(ctx, templateID)
	if err != nil {
		return v1.Worker{}, err
	}

	files, err := tmpl.Interpolate(t.Files, t.Slots, values)
	if err != nil {
		return v1.Worker{}, err
	}

	cfg := overrides
	if t.Defaults != nil {
		cfg = mergeConfigPartial(*t.Defaults, overrides)
	}

	return p.CreateWorker(ctx, tenantID, workerID, cfg, files, hostnames, build)
}
