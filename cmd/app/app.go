package main

import (
	"github.com/bloomlane/visual-search/internal/app"
	"github.com/joho/godotenv"
)

//	@title			Bloomlane Visual Search API
//	@version		1.0
//	@description	Визуальный поиск похожих букетов и индексация изображений товаров.

//	@BasePath	/api/v1

func main() {
	// .env опционален: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	app.Run()
}
