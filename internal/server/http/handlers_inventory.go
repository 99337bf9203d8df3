package httpserver

import (
	"net/http"

	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/result"
)

func (h *Handler) createSpace(w http.ResponseWriter, r *http.Request) {
	var req spaceRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, result.Of(h.deps.Spaces.Create(r.Context(), req.Name, req.ParentID, req.SpaceType)))
}

func (h *Handler) getSpace(w http.ResponseWriter, r *http.Request) {
	res := result.AndThen(result.Of(pathID(r)), func(id int64) result.Result[model.SpaceInfo] {
		return result.Of(h.deps.Spaces.Get(r.Context(), id))
	})
	respond(w, http.StatusOK, res)
}

func (h *Handler) spaceChildren(w http.ResponseWriter, r *http.Request) {
	res := result.AndThen(result.Of(pathID(r)), func(id int64) result.Result[childrenResponse] {
		return result.Map(result.Of(h.deps.Spaces.Children(r.Context(), id)), func(ids []int64) childrenResponse {
			if ids == nil {
				ids = []int64{}
			}
			return childrenResponse{SpaceID: id, ChildrenIDs: ids}
		})
	})
	respond(w, http.StatusOK, res)
}

func (h *Handler) deleteSpace(w http.ResponseWriter, r *http.Request) {
	res := result.AndThen(result.Of(pathID(r)), func(id int64) result.Result[successResponse] {
		return result.Of(successResponse{Success: true}, h.deps.Spaces.Delete(r.Context(), id))
	})
	respond(w, http.StatusOK, res)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, result.Map(result.Of(h.deps.Items.Create(r.Context(), req.input())), toItem))
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	res := result.AndThen(result.Of(pathID(r)), func(id int64) result.Result[itemResponse] {
		return result.Map(result.Of(h.deps.Items.Get(r.Context(), id)), toItem)
	})
	respond(w, http.StatusOK, res)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req itemRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, result.Map(result.Of(h.deps.Items.Update(r.Context(), id, req.input())), toItem))
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	res := result.AndThen(result.Of(pathID(r)), func(id int64) result.Result[successResponse] {
		return result.Of(successResponse{Success: true}, h.deps.Items.Delete(r.Context(), id))
	})
	respond(w, http.StatusOK, res)
}

func (h *Handler) itemInventories(w http.ResponseWriter, r *http.Request) {
	res := result.AndThen(result.Of(pathID(r)), func(id int64) result.Result[[]inventoryResponse] {
		return result.Map(result.Of(h.deps.Inventories.ListByItem(r.Context(), id)), toInventories)
	})
	respond(w, http.StatusOK, res)
}

func (h *Handler) propagateItem(w http.ResponseWriter, r *http.Request) {
	res := result.AndThen(result.Of(pathID(r)), func(id int64) result.Result[model.PropagationResult] {
		return result.Of(h.deps.Propagation.PropagateItem(r.Context(), id))
	})
	respond(w, http.StatusOK, res)
}
