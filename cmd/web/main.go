// @title           jobboard API
// @version         1.0
// @description     API джоб-борда: вакансии, отклики, чат и интервью (документация Swagger).
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /

package main

import "jobboard_backend/internal/app"

func main() {
	app.Run()
}
