package main

import (
	"fmt"
	"net/http"

	"github.com/hrplatform/attendance-backend-go/internal/config"
	appHTTP "github.com/hrplatform/attendance-backend-go/internal/handler/http"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/cron"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/database"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/jwt"
	"github.com/hrplatform/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/hrplatform/attendance-backend-go/internal/service/attendance"
	leaveService "github.com/hrplatform/attendance-backend-go/internal/service/leave"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, userRepo)
	leaveSvc := leaveService.NewLeaveService(tx, leaveRequestRepo, attendanceRepo, userRepo)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo, userRepo).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)

	router := appHTTP.NewRouter(jwtService, cfg.App.Env, attendanceHandler, leaveHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
