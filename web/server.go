package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/velfand/wmo_browser/scene"
	"github.com/velfand/wmo_browser/status"
)

var ServerScene *scene.Scene

func StartServer(addr string, s *scene.Scene, webPath string) error {
	ServerScene = s

	r := mux.NewRouter()
	r.HandleFunc("/json/scene", HandlerAjaxScene)
	r.HandleFunc("/json/scene/objects", HandlerAjaxObjects)
	r.HandleFunc("/json/scene/object/{name}", HandlerAjaxObject)
	r.HandleFunc("/json/scene/materials", HandlerAjaxMaterials)
	r.HandleFunc("/dump/scene", HandlerDumpScene)
	r.HandleFunc("/dump/scene/object/{name}", HandlerDumpObject)
	r.HandleFunc("/ws/status", status.HandlerWebsocket)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
