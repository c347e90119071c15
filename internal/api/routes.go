package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the task and list endpoints under /api.
func RegisterRoutes(r chi.Router, tasks *TaskHandler, lists *ListHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.ListTasks)
			r.Post("/", tasks.CreateTask)
			r.Post("/order", tasks.ReorderTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/done", tasks.SetDone)
				r.Patch("/text", tasks.UpdateText)
				r.Patch("/details", tasks.UpdateDetails)
				r.Patch("/list", tasks.UpdateList)
				r.Patch("/priority", tasks.UpdatePriority)
				r.Patch("/reminder", tasks.UpdateReminder)
				r.Patch("/repeat", tasks.UpdateRepeat)
			})
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", lists.ListLists)
			r.Post("/", lists.CreateList)
			r.Post("/order", lists.ReorderLists)
			r.Patch("/{id}/name", lists.RenameList)
			r.Delete("/{id}", lists.DeleteList)
		})
	})
}
